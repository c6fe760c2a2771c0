package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config aqueduct config
type Config struct {
	App    App       `json:"app"`
	DB     db.Config `json:"db"`
	Admins []string  `json:"admins"`
}

// App app config
type App struct {
	Port     int    `json:"port"`
	Location string `json:"location"`
}
