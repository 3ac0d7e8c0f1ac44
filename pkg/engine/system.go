package engine

// PingResults reports daemon reachability. The daemon answers the
// ping endpoint with a plain-text body and carries the interesting
// details in response headers.
type PingResults struct {
	APIVersion     string `json:"api_version"     yaml:"api_version"`
	OSType         string `json:"os_type"         yaml:"os_type"`
	BuilderVersion string `json:"builder_version" yaml:"builder_version"`
	Experimental   bool   `json:"experimental"    yaml:"experimental"`
}

// VersionResults is the daemon's reply to a version call.
type VersionResults struct {
	Version       string             `json:"Version"       yaml:"version"`
	APIVersion    string             `json:"ApiVersion"    yaml:"api_version"`
	MinAPIVersion string             `json:"MinAPIVersion" yaml:"min_api_version"`
	GitCommit     string             `json:"GitCommit"     yaml:"git_commit"`
	GoVersion     string             `json:"GoVersion"     yaml:"go_version"`
	Os            string             `json:"Os"            yaml:"os"`
	Arch          string             `json:"Arch"          yaml:"arch"`
	KernelVersion string             `json:"KernelVersion" yaml:"kernel_version"`
	BuildTime     string             `json:"BuildTime"     yaml:"build_time"`
	Platform      VersionPlatform    `json:"Platform"      yaml:"platform"`
	Components    []VersionComponent `json:"Components"    yaml:"components"`
}

// VersionPlatform names the daemon distribution.
type VersionPlatform struct {
	Name string `json:"Name" yaml:"name"`
}

// VersionComponent is a versioned component of the daemon, such as
// the engine itself, containerd, or runc.
type VersionComponent struct {
	Name    string `json:"Name"    yaml:"name"`
	Version string `json:"Version" yaml:"version"`
}

// InfoResults is the subset of the daemon's info reply that this
// client surfaces.
type InfoResults struct {
	ID                string   `json:"ID"                yaml:"id"`
	Containers        int      `json:"Containers"        yaml:"containers"`
	ContainersRunning int      `json:"ContainersRunning" yaml:"containers_running"`
	ContainersPaused  int      `json:"ContainersPaused"  yaml:"containers_paused"`
	ContainersStopped int      `json:"ContainersStopped" yaml:"containers_stopped"`
	Images            int      `json:"Images"            yaml:"images"`
	Driver            string   `json:"Driver"            yaml:"driver"`
	KernelVersion     string   `json:"KernelVersion"     yaml:"kernel_version"`
	OperatingSystem   string   `json:"OperatingSystem"   yaml:"operating_system"`
	OSType            string   `json:"OSType"            yaml:"os_type"`
	Architecture      string   `json:"Architecture"      yaml:"architecture"`
	NCPU              int      `json:"NCPU"              yaml:"ncpu"`
	MemTotal          int64    `json:"MemTotal"          yaml:"mem_total"`
	Name              string   `json:"Name"              yaml:"name"`
	ServerVersion     string   `json:"ServerVersion"     yaml:"server_version"`
	Labels            []string `json:"Labels"            yaml:"labels"`
	Warnings          []string `json:"Warnings"          yaml:"warnings"`
}
