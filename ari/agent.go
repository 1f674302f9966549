package ari

import "runtime"

const (
	libraryName    = "ari-go"
	libraryVersion = "0.9.0"
	libraryString  = libraryName + "/" + libraryVersion
)

// agentIdentifier is the User-Agent sent with outgoing requests.
func agentIdentifier() string {
	agent := libraryString + " " + runtime.Version()
	if os := goOSIdentifier(); os != "" {
		agent += " " + os
	}
	return agent
}
