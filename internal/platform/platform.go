package platform

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

const swVersTimeout = 2 * time.Second

func OS() string {
	return runtime.GOOS
}

func IsMac() bool {
	return runtime.GOOS == "darwin"
}

// MacVersion - версия macOS через sw_vers, пустая строка на других системах
func MacVersion(ctx context.Context) string {
	if !IsMac() {
		return ""
	}
	out, err := exec.CommandContext(ctx, "sw_vers", "-productVersion").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// osDescriptor считается один раз на процесс: sw_vers - внешний процесс
var osDescriptor = sync.OnceValue(func() string {
	ctx, cancel := context.WithTimeout(context.Background(), swVersTimeout)
	defer cancel()
	return describeOS(OS(), MacVersion(ctx))
})

func describeOS(goos, version string) string {
	if version == "" {
		return goos
	}
	return goos + " " + version
}

// ClientHeader - значение x-goog-api-client, на macOS с версией системы
func ClientHeader(name, version string) string {
	return name + "/" + version + " (" + osDescriptor() + "; " + runtime.GOARCH + ")"
}
