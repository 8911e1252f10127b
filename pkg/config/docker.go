package config

import (
	"os"
	"sync"
)

const dockerHostAlias = "host.docker.internal"

// dockerEnvFile exists in every Docker container.
var dockerEnvFile = "/.dockerenv"

var inDocker = sync.OnceValue(func() bool {
	_, err := os.Stat(dockerEnvFile)
	return err == nil
})

// IsRunningInDocker reports whether the process runs inside a Docker container.
func IsRunningInDocker() bool {
	return inDocker()
}

// ResolveHostForDocker maps loopback hosts to the Docker host alias so that a
// containerised engine can still reach Postgres or Redis on the developer machine.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, docker bool) string {
	if !docker {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostAlias
	}
	return host
}
