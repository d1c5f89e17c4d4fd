package config

import "os"

func IsDebug() bool {
	return os.Getenv("MEDRAG_DEBUG") == "1"
}

func IsJSONLog() bool {
	return os.Getenv("MEDRAG_LOG_FORMAT") == "json"
}
