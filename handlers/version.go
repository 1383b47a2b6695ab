package handlers

import (
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"boxstream/utils"
)

// version can be set at build time with -ldflags "-X boxstream/handlers.version=...".
var (
	version     string
	versionOnce sync.Once
)

type VersionHandler struct{}

type VersionResponse struct {
	Version      string `json:"version"`
	AddonVersion string `json:"addonVersion"`
}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// BuildVersion resolves the binary version once: linker flag, then
// version.txt, then module build info.
func BuildVersion() string {
	versionOnce.Do(func() {
		if strings.TrimSpace(version) != "" {
			version = strings.TrimSpace(version)
			return
		}
		for _, path := range []string{"version.txt", "/app/version.txt"} {
			data, err := os.ReadFile(path)
			if err == nil && strings.TrimSpace(string(data)) != "" {
				version = strings.TrimSpace(string(data))
				return
			}
		}
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
			return
		}
		version = "unknown"
	})
	return version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, VersionResponse{
		Version:      BuildVersion(),
		AddonVersion: AddonVersion,
	})
}
