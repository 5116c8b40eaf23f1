package service

// Principal 当前请求的已认证身份，由认证中间件构造后显式传入业务方法
type Principal struct {
	UserID    uint64
	Username  string
	StudentID string
	RealName  string
	Roles     []string
}

// HasAnyRole 是否拥有任一给定角色
func (p *Principal) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
