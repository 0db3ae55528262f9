package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
)

// 由 -ldflags "-X '.../pkg/app.Version=v1.0.0'" 注入；未注入时从构建信息补齐
var (
	Version   = ""
	GitCommit = ""
	BuildDate = ""
	AppName   = ""
)

const unknown = "unknown"

// Info 版本信息
type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified,omitempty"`
}

// GetInfo 当前二进制的版本信息
func GetInfo() Info {
	info := Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(&info, bi)
	}
	if info.AppName == "" {
		if exe, err := os.Executable(); err == nil {
			info.AppName = filepath.Base(exe)
		} else {
			info.AppName = "xdooria-editor"
		}
	}
	for _, f := range []*string{&info.Version, &info.GitCommit, &info.BuildDate} {
		if *f == "" {
			*f = unknown
		}
	}
	return info
}

// fromBuildInfo 只填补 ldflags 未给出的字段
func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
				if len(info.GitCommit) > 12 {
					info.GitCommit = info.GitCommit[:12]
				}
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

func (i Info) String() string {
	commit := i.GitCommit
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (commit: %s, build: %s, go: %s, plat: %s)",
		i.AppName, i.Version, commit, i.BuildDate, i.GoVersion, i.Platform)
}
