package admin

// Authorizer is the single place admin identity is decided. Admins are
// exempt from quota checks and may call privileged operations.
type Authorizer struct {
	ids map[int64]struct{}
}

func NewAuthorizer(adminIds []int64) *Authorizer {
	ids := make(map[int64]struct{}, len(adminIds))
	for _, id := range adminIds {
		ids[id] = struct{}{}
	}
	return &Authorizer{ids: ids}
}

func (a *Authorizer) IsAdmin(telegramId int64) bool {
	_, ok := a.ids[telegramId]
	return ok
}
