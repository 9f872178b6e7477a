package toolset

import "strings"

const (
	githubKeyringPath = "/usr/share/keyrings/githubcli-archive-keyring.gpg"
	githubKeyringURL  = "https://cli.github.com/packages/githubcli-archive-keyring.gpg"
	githubSourcesPath = "/etc/apt/sources.list.d/github-cli.list"
	githubSourcesLine = "deb [signed-by=" + githubKeyringPath + "] https://cli.github.com/packages stable main\n"

	rustupBootstrapURL = "https://sh.rustup.rs"

	// cargoPathPrefix makes rustup-managed binaries visible without a shell
	// profile reload.
	cargoPathPrefix = `PATH="$HOME/.cargo/bin:$PATH"`
	nvimPathPrefix  = `PATH="$HOME/.local/share/bob/nvim-bin:$PATH"`
)

// aptEnv keeps dpkg from prompting during unattended runs.
var aptEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

func aptGet(args ...string) []string {
	argv := []string{
		"apt-get",
		"--option=Dpkg::Options::=--force-confold",
		"--option=Dpkg::options::=--force-unsafe-io",
		"--assume-yes",
		"--quiet",
	}
	return append(argv, args...)
}

// AptUpdateStep refreshes the package index. The run driver issues it once
// before the first apt recipe; recipes that register a new repository issue
// their own refresh afterwards.
func AptUpdateStep() Step {
	return Step{
		Kind: StepRun,
		Name: "apt-get update",
		Argv: aptGet("update"),
		Env:  aptEnv,
	}
}

func aptInstall(packages ...string) Step {
	return Step{
		Kind: StepRun,
		Name: "apt-get install " + strings.Join(packages, " "),
		Argv: aptGet(append([]string{"install"}, packages...)...),
		Env:  aptEnv,
	}
}

func shellStep(name, script string) Step {
	return Step{
		Kind: StepRun,
		Name: name,
		Argv: []string{"sh", "-c", script},
	}
}

func shellProbe(script string) []string {
	return []string{"sh", "-c", script}
}

// Builtin assembles the managed workstation catalog. Catalog order is the
// probe and report order; install order additionally honors DependsOn edges.
func Builtin() (*Registry, error) {
	specs := []Spec{
		{
			ID:          "wget",
			Name:        "GNU Wget",
			Description: "network downloader used by the bootstrap recipes",
			Probe:       []string{"wget", "--version"},
			Recipe:      []Step{aptInstall("wget")},
		},
		{
			ID:          "git",
			Name:        "Git",
			Description: "distributed version control",
			Probe:       []string{"git", "--version"},
			Recipe:      []Step{aptInstall("git")},
		},
		{
			ID:          "ripgrep",
			Name:        "ripgrep",
			Description: "line-oriented recursive search",
			Probe:       []string{"rg", "--version"},
			Recipe:      []Step{aptInstall("ripgrep")},
			Optional:    true,
		},
		{
			ID:          "gh",
			Name:        "GitHub CLI",
			Description: "GitHub from the command line",
			Probe:       []string{"gh", "--version"},
			Recipe: []Step{
				{
					Kind: StepRun,
					Name: "download github cli signing key",
					Argv: []string{"wget", "--quiet", "--output-document=" + githubKeyringPath, githubKeyringURL},
				},
				{
					Kind: StepRun,
					Name: "open keyring permissions",
					Argv: []string{"chmod", "go+r", githubKeyringPath},
				},
				{
					Kind:    StepWriteFile,
					Name:    "register github cli repository",
					Path:    githubSourcesPath,
					Content: githubSourcesLine,
					Mode:    0o644,
				},
				AptUpdateStep(),
				aptInstall("gh"),
			},
			DependsOn: []string{"wget"},
		},
		{
			ID:          "rust",
			Name:        "Rust toolchain",
			Description: "rustc and cargo via the rustup bootstrap",
			Probe:       shellProbe(cargoPathPrefix + ` cargo --version`),
			Recipe: []Step{
				shellStep("rustup bootstrap",
					"wget --quiet --output-document=- "+rustupBootstrapURL+" | sh -s -- -y --no-modify-path"),
			},
			DependsOn: []string{"wget"},
		},
		{
			ID:          "bob",
			Name:        "Bob",
			Description: "neovim version manager installed through cargo",
			Probe:       shellProbe(cargoPathPrefix + ` bob --version`),
			Recipe: []Step{
				shellStep("cargo install bob-nvim", cargoPathPrefix+` cargo install bob-nvim`),
			},
			DependsOn: []string{"rust"},
			Optional:  true,
		},
		{
			ID:          "yazi",
			Name:        "Yazi",
			Description: "terminal file manager installed through cargo",
			Probe:       shellProbe(cargoPathPrefix + ` yazi --version`),
			Recipe: []Step{
				shellStep("cargo install yazi", cargoPathPrefix+` cargo install --locked yazi-fm yazi-cli`),
			},
			DependsOn: []string{"rust"},
			Optional:  true,
		},
		{
			ID:          "nvim",
			Name:        "Neovim",
			Description: "neovim stable channel managed by bob",
			Probe:       shellProbe(nvimPathPrefix + ` nvim --version`),
			Recipe: []Step{
				shellStep("bob use stable", cargoPathPrefix+` bob use stable`),
			},
			DependsOn: []string{"bob"},
			Optional:  true,
		},
	}

	reg := NewRegistry()
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return nil, err
		}
	}
	if err := reg.ValidateDependencies(); err != nil {
		return nil, err
	}
	return reg, nil
}
