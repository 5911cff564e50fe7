package model

// PaymentMethod 缴费方式
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOnline PaymentMethod = "Online"
	PaymentMethodCheck  PaymentMethod = "Check"
	PaymentMethodCard   PaymentMethod = "Card"
)

// Valid 是否为已知缴费方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodOnline, PaymentMethodCheck, PaymentMethodCard:
		return true
	}
	return false
}

// PaymentStatus 缴费状态
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// Valid 是否为已知状态
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPending, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment 缴费流水（资源 API /payments），只追加不修改
type Payment struct {
	ID              ID            `json:"id,omitempty"`
	StudentID       ID            `json:"studentId"`
	StudentName     string        `json:"studentName,omitempty"`
	Amount          Money         `json:"amount"`
	PaymentDate     Date          `json:"paymentDate"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Semester        Ordinal       `json:"semester"`
	Status          PaymentStatus `json:"status"`
	ReceiptNumber   string        `json:"receiptNumber"`
	TransactionID   string        `json:"transactionId,omitempty"`
	ReferenceNumber string        `json:"referenceNumber,omitempty"`
	BankName        string        `json:"bankName,omitempty"`
	Remarks         string        `json:"remarks,omitempty"`
	RecordedBy      string        `json:"recordedBy,omitempty"`
}

// IsCompleted 是否计入已缴金额
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}
