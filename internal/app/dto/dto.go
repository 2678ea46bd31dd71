package dto

import "time"

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"` // для ошибок валидации
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Компании и договоры ============

type CompanyResponse struct {
	ID        uint   `json:"id"`
	ShortName string `json:"short_name"`
	TIN       string `json:"tin"`
	IsBank    bool   `json:"is_bank"`
}

type ContractResponse struct {
	ID                   uint      `json:"id"`
	Number               string    `json:"number"`
	Date                 time.Time `json:"date"`
	Seller               string    `json:"seller"`
	Buyer                string    `json:"buyer"`
	IsDynamicDiscounting bool      `json:"is_dynamic_discounting"`
	IsFactoring          bool      `json:"is_factoring"`
}

// ============ Поставки ============

type SupplyResponse struct {
	ID           uint       `json:"id"`
	Number       string     `json:"number"`
	Date         time.Time  `json:"date"`
	Amount       float64    `json:"amount"`
	Type         string     `json:"type"`
	ContractID   uint       `json:"contract_id"`
	RegistryID   *uint      `json:"registry_id,omitempty"`
	BankID       *uint      `json:"bank_id,omitempty"`
	DelayEndDate *time.Time `json:"delay_end_date,omitempty"`
	DocumentKey  string     `json:"document_key,omitempty"`
}

type SupplyListResponse struct {
	Supplies []SupplyResponse `json:"supplies"`
	Total    int              `json:"total"`
}

type CreateSupplyRequest struct {
	Number       string     `json:"number" binding:"required"`
	Date         time.Time  `json:"date" binding:"required"`
	Amount       float64    `json:"amount" binding:"required,gt=0"`
	Type         string     `json:"type" binding:"required,oneof=invoice delivery_note utd"`
	ContractID   uint       `json:"contract_id" binding:"required"`
	DelayEndDate *time.Time `json:"delay_end_date"`
}

// ============ Реестры ============

type RegistryResponse struct {
	ID          uint             `json:"id"`
	Number      string           `json:"number"`
	Date        time.Time        `json:"date"`
	Amount      float64          `json:"amount"`
	Status      string           `json:"status"`
	SignStatus  string           `json:"sign_status"`
	FinanceType string           `json:"finance_type"`
	Seller      string           `json:"seller"`
	Buyer       string           `json:"buyer"`
	Bank        string           `json:"bank,omitempty"`
	IsVerified  bool             `json:"is_verified"`
	Supplies    []SupplyResponse `json:"supplies,omitempty"` // только для GET одного реестра
}

type RegistryListResponse struct {
	Registries []RegistryResponse `json:"registries"`
	Total      int                `json:"total"`
}

type CreateRegistryRequest struct {
	ContractID           uint   `json:"contract_id" binding:"required"`
	FinanceType          string `json:"finance_type" binding:"required,oneof=dynamic_discounting supply_verification"`
	SupplyIDs            []uint `json:"supply_ids" binding:"required,min=1"`
	BankID               *uint  `json:"bank_id"`
	FactoringAgreementID *uint  `json:"factoring_agreement_id"`
}

// ============ Дисконты ============

type DiscountResponse struct {
	ID                 uint      `json:"id"`
	RegistryID         uint      `json:"registry_id"`
	Rate               float64   `json:"rate"`
	DiscountedAmount   float64   `json:"discounted_amount"`
	AmountToPay        float64   `json:"amount_to_pay"`
	PlannedPaymentDate time.Time `json:"planned_payment_date"`
	DiscountingSource  string    `json:"discounting_source"`
}

type CreateDiscountRequest struct {
	Rate               float64   `json:"rate" binding:"required,gt=0"`
	PlannedPaymentDate time.Time `json:"planned_payment_date" binding:"required"`
	DiscountingSource  string    `json:"discounting_source" binding:"omitempty,oneof=personal external"`
}

type UpdateDiscountRequest struct {
	Rate               float64   `json:"rate" binding:"required,gt=0"`
	PlannedPaymentDate time.Time `json:"planned_payment_date" binding:"required"`
}

// ============ Настройки дисконтирования ============

type DiscountSettingsResponse struct {
	CompanyID          uint   `json:"company_id"`
	DaysType           string `json:"days_type"`
	PaymentWeekDays    int    `json:"payment_week_days"`
	MinimumDaysToShift int    `json:"minimum_days_to_shift"`
}

type UpdateDiscountSettingsRequest struct {
	DaysType           string `json:"days_type" binding:"required,oneof=calendar business"`
	PaymentWeekDays    int    `json:"payment_week_days" binding:"required,gte=1,lte=127"`
	MinimumDaysToShift int    `json:"minimum_days_to_shift" binding:"required,gte=0"`
}

// ============ Праздничные дни ============

type FreeDayResponse struct {
	ID       uint      `json:"id"`
	Date     time.Time `json:"date"`
	IsActive bool      `json:"is_active"`
}

type CreateFreeDayRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// ============ Неформализованные документы ============

type DocumentReceiverResponse struct {
	CompanyID uint       `json:"company_id"`
	Company   string     `json:"company"`
	IsSigned  bool       `json:"is_signed"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

type DocumentResponse struct {
	ID            uint                       `json:"id"`
	Sender        string                     `json:"sender"`
	Topic         string                     `json:"topic"`
	Message       string                     `json:"message,omitempty"`
	Status        string                     `json:"status"`
	DeclineReason string                     `json:"decline_reason,omitempty"`
	AttachmentKey string                     `json:"attachment_key,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	Receivers     []DocumentReceiverResponse `json:"receivers"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type CreateDocumentRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Message     string `json:"message"`
	ReceiverIDs []uint `json:"receiver_ids" binding:"required,min=1"`
}

type DeclineDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ============ Пользователи ============

type UserResponse struct {
	ID        uint   `json:"id"`
	Login     string `json:"login"`
	FullName  string `json:"full_name"`
	CompanyID uint   `json:"company_id"`
	Company   string `json:"company"`
	Role      int    `json:"role"`
}

type RegisterRequest struct {
	Login     string `json:"login" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=6"`
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	CompanyID uint   `json:"company_id" binding:"required"`
	Role      int    `json:"role"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}
