// 访问控制策略表。每个 (资源, 操作) 组合映射到所需的最低角色，
// 在请求进入处理器之前由中间件统一判定。
package domain

// Resource 受保护的资源类型
type Resource string

const (
	ResourceExchange   Resource = "exchange"
	ResourceAssetClass Resource = "asset_class"
	ResourceAsset      Resource = "asset"
	ResourceOrder      Resource = "order"
)

// Action 资源上的操作
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// policyTable (资源, 操作) -> 所需最低角色。
// RoleTrader 表示任意已认证用户即可。
var policyTable = map[Resource]map[Action]UserRole{
	ResourceExchange: {
		ActionRead:   RoleTrader,
		ActionWrite:  RoleAdmin,
		ActionDelete: RoleAdmin,
	},
	ResourceAssetClass: {
		ActionRead:   RoleTrader,
		ActionWrite:  RoleAdmin,
		ActionDelete: RoleAdmin,
	},
	ResourceAsset: {
		ActionRead:   RoleTrader,
		ActionWrite:  RoleAdmin,
		ActionDelete: RoleAdmin,
	},
	ResourceOrder: {
		ActionRead:   RoleTrader,
		ActionWrite:  RoleTrader,
		ActionDelete: RoleAdmin,
	},
}

// RequiredRole 返回执行操作所需的最低角色
func RequiredRole(resource Resource, action Action) UserRole {
	if actions, ok := policyTable[resource]; ok {
		if role, ok := actions[action]; ok {
			return role
		}
	}
	// 未登记的组合一律按管理员处理
	return RoleAdmin
}

// Allowed 判断角色是否可以执行操作
func Allowed(role UserRole, resource Resource, action Action) bool {
	required := RequiredRole(resource, action)
	if required == RoleAdmin {
		return role == RoleAdmin
	}
	return role.Valid()
}
