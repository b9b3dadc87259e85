package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrForbidden - 403: 权限不足.
	ErrForbidden
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 用户/会话相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrInvalidCredentials - 401: 用户名或密码错误.
	ErrInvalidCredentials
	// ErrPasswordIncorrect - 401: 当前密码错误.
	ErrPasswordIncorrect
)

// 楼宇/ProEvent相关错误码 (102xxx).
const (
	// ErrBuildingNotFound - 404: 楼宇不存在.
	ErrBuildingNotFound int = iota + 102000
	// ErrProEventNotFound - 404: ProEvent不存在.
	ErrProEventNotFound
	// ErrPanelStateUnknown - 400: 无法确定面板状态.
	ErrPanelStateUnknown
	// ErrEmptyBulkUpdate - 400: 批量更新列表为空.
	ErrEmptyBulkUpdate
)

// 查询模板相关错误码 (103xxx).
const (
	// ErrQueryNotFound - 404: 查询模板不存在.
	ErrQueryNotFound int = iota + 103000
	// ErrQueryInvalid - 400: 查询模板校验失败.
	ErrQueryInvalid
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
