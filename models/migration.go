package models

import (
	"log"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&InspectionRecord{}, &Breaker{}, &ThermalImage{},
		&ReportRecord{},
		&ImportRun{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
