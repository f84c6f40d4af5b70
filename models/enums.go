package models

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleCounsellor Role = "counsellor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCounsellor:
		return true
	}
	return false
}

// PaymentStage is the 4-stage lifecycle of the core recurring sale.
type PaymentStage string

const (
	PaymentStageInitial       PaymentStage = "INITIAL"
	PaymentStageBeforeVisa    PaymentStage = "BEFORE_VISA"
	PaymentStageAfterVisa     PaymentStage = "AFTER_VISA"
	PaymentStageSubmittedVisa PaymentStage = "SUBMITTED_VISA"
)

func (s PaymentStage) Valid() bool {
	switch s {
	case PaymentStageInitial, PaymentStageBeforeVisa, PaymentStageAfterVisa, PaymentStageSubmittedVisa:
		return true
	}
	return false
}

// RevenueStages are the stages whose amounts count toward revenue and toward
// "paid" in the outstanding-balance figures. SUBMITTED_VISA is tracked but
// deliberately excluded.
var RevenueStages = []PaymentStage{
	PaymentStageInitial,
	PaymentStageBeforeVisa,
	PaymentStageAfterVisa,
}

type ActionType string

const (
	ActionCreated ActionType = "CREATED"
	ActionUpdated ActionType = "UPDATED"
)

// ProductType is the closed set of purchasable products.
type ProductType string

const (
	ProductAllFinanceEmployment ProductType = "ALL_FINANCE_EMPLOYEMENT"
	ProductSimCardActivation    ProductType = "SIM_CARD_ACTIVATION"
	ProductAirTicket            ProductType = "AIR_TICKET"
	ProductInsurance            ProductType = "INSURANCE"
	ProductLoan                 ProductType = "LOAN"
	ProductVisaExtension        ProductType = "VISA_EXTENSION"
	ProductForexFees            ProductType = "FOREX_FEES"
	ProductForexCard            ProductType = "FOREX_CARD"
	ProductTuitionFees          ProductType = "TUITION_FEES"
	ProductCreditCard           ProductType = "CREDIT_CARD"
	ProductNewSell              ProductType = "NEW_SELL"
	ProductBeaconAccount        ProductType = "BEACON_ACCOUNT"

	// master-only products: no satellite table, amount lives on the ledger row
	ProductBankBalanceCertificate ProductType = "BANK_BALANCE_CERTIFICATE"
	ProductDocumentCourier        ProductType = "DOCUMENT_COURIER"
)

// EntityKind names the satellite table a product payment points to.
// EntityKindMasterOnly is the sentinel for products with no satellite table.
type EntityKind string

const (
	EntityKindMasterOnly        EntityKind = "master_only"
	EntityKindFinanceEmployment EntityKind = "finance_employment"
	EntityKindSimCardActivation EntityKind = "sim_card_activation"
	EntityKindAirTicket         EntityKind = "air_ticket"
	EntityKindInsurance         EntityKind = "insurance"
	EntityKindLoan              EntityKind = "loan"
	EntityKindVisaExtension     EntityKind = "visa_extension"
	EntityKindForexFee          EntityKind = "forex_fee"
	EntityKindForexCard         EntityKind = "forex_card"
	EntityKindTuitionFee        EntityKind = "tuition_fee"
	EntityKindCreditCard        EntityKind = "credit_card"
	EntityKindNewSell           EntityKind = "new_sell"
	EntityKindBeaconAccount     EntityKind = "beacon_account"
)

// ProductEntityKinds is the compiled-in mapping from product to satellite
// table. The entity type stored on a ledger row always comes from this map,
// never from client input.
var ProductEntityKinds = map[ProductType]EntityKind{
	ProductAllFinanceEmployment:   EntityKindFinanceEmployment,
	ProductSimCardActivation:      EntityKindSimCardActivation,
	ProductAirTicket:              EntityKindAirTicket,
	ProductInsurance:              EntityKindInsurance,
	ProductLoan:                   EntityKindLoan,
	ProductVisaExtension:          EntityKindVisaExtension,
	ProductForexFees:              EntityKindForexFee,
	ProductForexCard:              EntityKindForexCard,
	ProductTuitionFees:            EntityKindTuitionFee,
	ProductCreditCard:             EntityKindCreditCard,
	ProductNewSell:                EntityKindNewSell,
	ProductBeaconAccount:          EntityKindBeaconAccount,
	ProductBankBalanceCertificate: EntityKindMasterOnly,
	ProductDocumentCourier:        EntityKindMasterOnly,
}

// RevenueRules classifies products for revenue purposes. Passed into the
// aggregation engine instead of being read as package globals so the
// classification can be tested on its own.
type RevenueRules struct {
	// CoreProduct is the one product whose sales are reported as their own
	// dashboard bucket, separate from the "other products" bucket.
	CoreProduct ProductType
	// CountOnly products contribute to enrollment counts but their monetary
	// value is excluded from revenue totals.
	CountOnly []ProductType
}

func (r RevenueRules) IsCountOnly(p ProductType) bool {
	for _, c := range r.CountOnly {
		if c == p {
			return true
		}
	}
	return false
}

func DefaultRevenueRules() RevenueRules {
	return RevenueRules{
		CoreProduct: ProductAllFinanceEmployment,
		CountOnly: []ProductType{
			ProductLoan,
			ProductForexCard,
			ProductTuitionFees,
			ProductCreditCard,
			ProductSimCardActivation,
			ProductInsurance,
			ProductBeaconAccount,
			ProductAirTicket,
		},
	}
}
