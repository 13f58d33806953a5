// provisioner.go assembles the spill host provisioning sequence.
//
// The sequence installs, in fixed order: the container runtime (docker),
// the compose orchestrator binary, and the NVIDIA container toolkit that
// bridges host GPUs into containers — then verifies the chain with a
// GPU-enabled smoke test. Installation order is an invariant: runtime
// before orchestrator before GPU bridge, because each later step assumes
// the earlier binaries exist.
//
// Installation steps are idempotent: each checks its precondition (dpkg
// state, binary presence) before mutating, so re-running the provisioner
// on a fully installed host is a no-op reporting every step as satisfied.

package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/omersajid9/spill/internal/model"
)

// Step names, in sequence order. Exported so callers (CLI output, state
// derivation, tests) can reference steps without restating strings.
const (
	StepAptUpdate           = "apt-update"
	StepInstallDocker       = "install-docker"
	StepDockerGroup         = "docker-group"
	StepInstallCompose      = "install-compose"
	StepComposeVersionCheck = "compose-version-check"
	StepNvidiaRepo          = "nvidia-repo"
	StepInstallToolkit      = "install-toolkit"
	StepGPUSmokeTest        = "gpu-smoke-test"
)

// runtimePackage is the container runtime apt package.
const runtimePackage = "docker.io"

// toolkitPackage is the GPU bridge apt package.
const toolkitPackage = "nvidia-container-toolkit"

// GPUProber runs the GPU-enabled container smoke test. The production
// implementation pulls and runs a CUDA diagnostic image through the
// Docker SDK; tests substitute a fake.
type GPUProber interface {
	Probe(ctx context.Context) (string, error)
}

// Options configures a Provisioner. The zero value selects production
// defaults; tests override the paths to point into temp directories.
type Options struct {
	// ComposePath is where the orchestrator binary is installed.
	// Default: /usr/local/bin/docker-compose.
	ComposePath string

	// OSReleasePath is the distribution identification file.
	// Default: /etc/os-release.
	OSReleasePath string

	// KeyringPath is where the NVIDIA repository signing key is written.
	// apt trusts ASCII-armored keys dropped in trusted.gpg.d.
	// Default: /etc/apt/trusted.gpg.d/nvidia-container-toolkit.asc.
	KeyringPath string

	// SourceListPath is where the NVIDIA apt source list is written.
	// Default: /etc/apt/sources.list.d/nvidia-container-toolkit.list.
	SourceListPath string

	// GOOS and GOARCH identify the host platform for the compose
	// download lookup. Defaults: the runtime's values.
	GOOS   string
	GOARCH string

	// User is the invoking user added to the docker group. Default:
	// $SUDO_USER, falling back to $USER. The provisioner typically runs
	// under sudo, and SUDO_USER names the human who should gain
	// socket access — not root.
	User string
}

// withDefaults fills unset options with production values.
func (o Options) withDefaults() Options {
	if o.ComposePath == "" {
		o.ComposePath = "/usr/local/bin/docker-compose"
	}
	if o.OSReleasePath == "" {
		o.OSReleasePath = "/etc/os-release"
	}
	if o.KeyringPath == "" {
		o.KeyringPath = "/etc/apt/trusted.gpg.d/nvidia-container-toolkit.asc"
	}
	if o.SourceListPath == "" {
		o.SourceListPath = "/etc/apt/sources.list.d/nvidia-container-toolkit.list"
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.GOARCH == "" {
		o.GOARCH = runtime.GOARCH
	}
	if o.User == "" {
		o.User = os.Getenv("SUDO_USER")
		if o.User == "" {
			o.User = os.Getenv("USER")
		}
	}
	return o
}

// Provisioner builds and runs the host provisioning sequence.
type Provisioner struct {
	cmd  CommandRunner
	dl   Downloader
	gpu  GPUProber
	opts Options
}

// New creates a Provisioner with the given collaborators. cmd executes
// host commands, dl fetches release assets, gpu runs the smoke test.
func New(cmd CommandRunner, dl Downloader, gpu GPUProber, opts Options) *Provisioner {
	return &Provisioner{
		cmd:  cmd,
		dl:   dl,
		gpu:  gpu,
		opts: opts.withDefaults(),
	}
}

// Steps returns the provisioning sequence in its required order.
func (p *Provisioner) Steps() []Step {
	return []Step{
		{Name: StepAptUpdate, Criticality: model.CriticalityFatal, Run: p.aptUpdate},
		{Name: StepInstallDocker, Criticality: model.CriticalityFatal, Run: p.installDocker},
		{Name: StepDockerGroup, Criticality: model.CriticalityFatal, Run: p.dockerGroup},
		{Name: StepInstallCompose, Criticality: model.CriticalityFatal, Run: p.installCompose},
		{Name: StepComposeVersionCheck, Criticality: model.CriticalityAdvisory, Run: p.composeVersionCheck},
		{Name: StepNvidiaRepo, Criticality: model.CriticalityFatal, Run: p.nvidiaRepo},
		{Name: StepInstallToolkit, Criticality: model.CriticalityFatal, Run: p.installToolkit},
		{Name: StepGPUSmokeTest, Criticality: model.CriticalityAdvisory, Run: p.gpuSmokeTest},
	}
}

// Run executes the whole sequence. See RunSequence for failure semantics.
func (p *Provisioner) Run(ctx context.Context) ([]model.StepResult, error) {
	return RunSequence(ctx, p.Steps())
}

// aptUpdate refreshes the package index. Failure is fatal: no subsequent
// install can be trusted against a stale or broken index.
func (p *Provisioner) aptUpdate(ctx context.Context) (model.StepStatus, string, error) {
	if output, err := p.cmd.Run(ctx, "apt-get", "update"); err != nil {
		return model.StepFailed, output, err
	}
	return model.StepOK, "", nil
}

// installDocker ensures the container runtime package is installed.
// dpkg -s exits non-zero when the package is absent, which is the
// precondition check, not a failure.
func (p *Provisioner) installDocker(ctx context.Context) (model.StepStatus, string, error) {
	if _, err := p.cmd.Run(ctx, "dpkg", "-s", runtimePackage); err == nil {
		return model.StepSatisfied, runtimePackage + " already installed", nil
	}

	if output, err := p.cmd.Run(ctx, "apt-get", "install", "-y", runtimePackage); err != nil {
		return model.StepFailed, output, err
	}
	return model.StepOK, "", nil
}

// dockerGroup adds the invoking user to the docker group so the runtime
// socket is usable without sudo. The membership only takes effect on the
// next login session — the result message carries that caveat because it
// is the one thing operators consistently trip over.
func (p *Provisioner) dockerGroup(ctx context.Context) (model.StepStatus, string, error) {
	if p.opts.User == "" {
		return model.StepFailed, "", fmt.Errorf("cannot determine invoking user (SUDO_USER and USER are both unset)")
	}

	if output, err := p.cmd.Run(ctx, "usermod", "-aG", "docker", p.opts.User); err != nil {
		return model.StepFailed, output, err
	}
	return model.StepOK, fmt.Sprintf("added %s to the docker group; takes effect at next login", p.opts.User), nil
}

// installCompose fetches the orchestrator binary for the host platform and
// makes it executable. The platform is resolved through the lookup table
// first, so an unsupported OS/architecture fails with a named error
// before any network traffic.
//
// Already satisfied when the binary exists at the install path.
func (p *Provisioner) installCompose(ctx context.Context) (model.StepStatus, string, error) {
	url, err := ComposeDownloadURL(p.opts.GOOS, p.opts.GOARCH)
	if err != nil {
		return model.StepFailed, "", err
	}

	if _, err := os.Stat(p.opts.ComposePath); err == nil {
		return model.StepSatisfied, p.opts.ComposePath + " already present", nil
	}

	data, err := p.dl.Fetch(ctx, url)
	if err != nil {
		return model.StepFailed, "", err
	}

	if err := os.MkdirAll(filepath.Dir(p.opts.ComposePath), 0o755); err != nil {
		return model.StepFailed, "", fmt.Errorf("failed to create %s: %w", filepath.Dir(p.opts.ComposePath), err)
	}
	// 0755: the binary must be executable by every user, matching a
	// manual `chmod +x` after download.
	if err := os.WriteFile(p.opts.ComposePath, data, 0o755); err != nil {
		return model.StepFailed, "", fmt.Errorf("failed to write %s: %w", p.opts.ComposePath, err)
	}

	return model.StepOK, fmt.Sprintf("installed compose %s to %s", ComposeVersion, p.opts.ComposePath), nil
}

// composeVersionCheck smoke-tests the installed binary. Advisory: a failed
// version probe is surfaced, but a partially usable binary should not
// abort host provisioning.
func (p *Provisioner) composeVersionCheck(ctx context.Context) (model.StepStatus, string, error) {
	output, err := p.cmd.Run(ctx, p.opts.ComposePath, "--version")
	if err != nil {
		return model.StepFailed, output, fmt.Errorf("compose version check failed: %w", err)
	}
	return model.StepOK, output, nil
}

// nvidiaRepo registers the NVIDIA container toolkit apt repository scoped
// to the host's exact distribution string. Distribution detection reads
// /etc/os-release; an unsupported distribution is a named fatal error.
//
// The signing key and source list are always (re)written — overwriting
// identical files is harmless, and it repairs a half-registered repo from
// an earlier aborted run.
func (p *Provisioner) nvidiaRepo(ctx context.Context) (model.StepStatus, string, error) {
	data, err := os.ReadFile(p.opts.OSReleasePath)
	if err != nil {
		return model.StepFailed, "", fmt.Errorf("failed to read %s: %w", p.opts.OSReleasePath, err)
	}

	distro, err := ParseOSRelease(data)
	if err != nil {
		return model.StepFailed, "", err
	}

	keyURL, listURL, err := NvidiaRepoTargets(distro)
	if err != nil {
		return model.StepFailed, "", err
	}

	key, err := p.dl.Fetch(ctx, keyURL)
	if err != nil {
		return model.StepFailed, "", err
	}
	if err := writeRootFile(p.opts.KeyringPath, key, 0o644); err != nil {
		return model.StepFailed, "", err
	}

	list, err := p.dl.Fetch(ctx, listURL)
	if err != nil {
		return model.StepFailed, "", err
	}
	if err := writeRootFile(p.opts.SourceListPath, list, 0o644); err != nil {
		return model.StepFailed, "", err
	}

	return model.StepOK, fmt.Sprintf("registered NVIDIA repository for %s", distro), nil
}

// installToolkit installs the GPU bridge from the freshly registered
// repository and restarts the container runtime so it picks up the GPU
// integration. The index refresh is repeated here because the repository
// was added after the first apt-update.
func (p *Provisioner) installToolkit(ctx context.Context) (model.StepStatus, string, error) {
	if _, err := p.cmd.Run(ctx, "dpkg", "-s", toolkitPackage); err == nil {
		return model.StepSatisfied, toolkitPackage + " already installed", nil
	}

	if output, err := p.cmd.Run(ctx, "apt-get", "update"); err != nil {
		return model.StepFailed, output, err
	}
	if output, err := p.cmd.Run(ctx, "apt-get", "install", "-y", toolkitPackage); err != nil {
		return model.StepFailed, output, err
	}
	if output, err := p.cmd.Run(ctx, "systemctl", "restart", "docker"); err != nil {
		return model.StepFailed, output, err
	}

	return model.StepOK, "", nil
}

// gpuSmokeTest runs the GPU diagnostic container. Advisory by contract:
// a host without a GPU, or with unconfigured drivers, must still be able
// to use the provisioner for CPU-only work. The message makes the
// distinction explicit so "GPU test failed" is never read as
// "installation failed".
func (p *Provisioner) gpuSmokeTest(ctx context.Context) (model.StepStatus, string, error) {
	output, err := p.gpu.Probe(ctx)
	if err != nil {
		msg := "GPU test failed — installation completed, but GPU access could not be verified"
		if output != "" {
			msg = fmt.Sprintf("%s: %s", msg, output)
		}
		return model.StepFailed, msg, err
	}
	return model.StepOK, "GPU visible from containers", nil
}

// writeRootFile writes a system file, creating parent directories.
func writeRootFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
