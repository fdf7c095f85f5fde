package models

import "gorm.io/gorm"

type PaymentMethodLabel string

const (
	CashOnDelivery  PaymentMethodLabel = "Cash on Delivery"
	MobileMoney     PaymentMethodLabel = "Mobile Money"
	CreditDebitCard PaymentMethodLabel = "Credit/Debit Card"
)

const DefaultPaymentProvider = "paystack"

func (l PaymentMethodLabel) Valid() bool {
	switch l {
	case CashOnDelivery, MobileMoney, CreditDebitCard:
		return true
	}
	return false
}

// PaymentMethod is a reusable bundle of buyer, delivery and payment details.
// Guest checkouts leave UserID nil.
type PaymentMethod struct {
	gorm.Model
	UserID   *uint              `json:"userId,omitempty" gorm:"index"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Phone    string             `json:"phone"`
	Address  string             `json:"address"`
	City     string             `json:"city"`
	Method   PaymentMethodLabel `json:"paymentMethod" gorm:"column:payment_method;size:32"`
	Provider string             `json:"provider" gorm:"size:32"`
}
