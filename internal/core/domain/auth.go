package domain

// Claims - данные пользователя, извлеченные из bearer-токена.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// RoleOperator - сотрудник площадки: верификация, тарифы, продвижение
const RoleOperator = "operator"

func (c Claims) IsOperator() bool {
	return c.Role == RoleOperator
}
