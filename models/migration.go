package models

import "gorm.io/gorm"

// MigrateAll runs the schema migration for every table the application owns.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Client{},
		&Payment{},
		&ProductPayment{},
		&FinanceEmployment{},
		&SimCardActivation{},
		&AirTicket{},
		&Insurance{},
		&Loan{},
		&VisaExtension{},
		&ForexFee{},
		&ForexCard{},
		&TuitionFee{},
		&CreditCard{},
		&NewSell{},
		&BeaconAccount{},
		&LeaderboardTarget{},
		&NotificationRecord{},
	)
}
