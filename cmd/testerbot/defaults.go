package main

import (
	"github.com/spf13/viper"
)

func initViperDefaults() {
	// HTTP endpoint
	viper.SetDefault("server.bind", "")
	viper.SetDefault("server.port", 3978)

	// State storage
	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.dir", "./.state")

	// Intent recognition
	viper.SetDefault("recognizer.endpoint", "")
	viper.SetDefault("recognizer.app_id", "")
	viper.SetDefault("recognizer.key", "")
	viper.SetDefault("recognizer.detail_intent", "beerPreference")
	viper.SetDefault("recognizer.detail_threshold", 0.75)
	viper.SetDefault("recognizer.cancel_intent", "Utilities_Cancel")
	viper.SetDefault("recognizer.help_intent", "Utilities_Help")

	// Knowledge base (optional; the QnA test reports itself unconfigured
	// when these are empty)
	viper.SetDefault("kb.host", "")
	viper.SetDefault("kb.id", "")
	viper.SetDefault("kb.endpoint_key", "")
}
