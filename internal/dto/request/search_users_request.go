package request

// SearchUsersRequest 按钱包地址或昵称搜索用户
type SearchUsersRequest struct {
	Query string `json:"query" validate:"required,min=3,max=64"`
}
