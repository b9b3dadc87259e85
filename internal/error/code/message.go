package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "success",
	ErrUnknown:         "Internal server error",
	ErrBind:            "Invalid request body",
	ErrValidation:      "Request validation failed",
	ErrTokenInvalid:    "Invalid or expired token",
	ErrForbidden:       "Insufficient permissions",
	ErrTooManyRequests: "Too many requests",

	// 用户/会话相关错误码
	ErrUserNotFound:       "User not found",
	ErrUserAlreadyExist:   "User already exists",
	ErrInvalidCredentials: "Invalid credentials",
	ErrPasswordIncorrect:  "Current password is incorrect",

	// 楼宇/ProEvent相关错误码
	ErrBuildingNotFound:  "Building not found",
	ErrProEventNotFound:  "ProEvent not found",
	ErrPanelStateUnknown: "Could not determine panel state",
	ErrEmptyBulkUpdate:   "No ignore updates provided",

	// 查询模板相关错误码
	ErrQueryNotFound: "Query not found",
	ErrQueryInvalid:  "Invalid query",

	// 数据库相关错误码
	ErrDatabase:       "Database error",
	ErrRecordNotFound: "Record not found",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrForbidden:       StatusForbidden,
	ErrTooManyRequests: StatusTooManyRequests,

	// 用户/会话相关错误码
	ErrUserNotFound:       StatusNotFound,
	ErrUserAlreadyExist:   StatusBadRequest,
	ErrInvalidCredentials: StatusUnauthorized,
	ErrPasswordIncorrect:  StatusUnauthorized,

	// 楼宇/ProEvent相关错误码
	ErrBuildingNotFound:  StatusNotFound,
	ErrProEventNotFound:  StatusNotFound,
	ErrPanelStateUnknown: StatusBadRequest,
	ErrEmptyBulkUpdate:   StatusBadRequest,

	// 查询模板相关错误码
	ErrQueryNotFound: StatusNotFound,
	ErrQueryInvalid:  StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "Internal server error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
