package entity

import "time"

type Settings struct {
	StoreName          string    `bson:"storeName" json:"storeName" validate:"required"`
	StoreEmail         string    `bson:"storeEmail" json:"storeEmail" validate:"required,email"`
	StorePhone         string    `bson:"storePhone" json:"storePhone"`
	StoreAddress       string    `bson:"storeAddress" json:"storeAddress"`
	OrderNotifications bool      `bson:"orderNotifications" json:"orderNotifications"`
	EmailNotifications bool      `bson:"emailNotifications" json:"emailNotifications"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings is what the store uses until an admin saves settings.
func DefaultSettings() Settings {
	return Settings{
		StoreName:          "Kusina De Amadeo",
		StoreEmail:         "kusinadeamadeo@gmail.com",
		OrderNotifications: true,
		EmailNotifications: true,
	}
}
