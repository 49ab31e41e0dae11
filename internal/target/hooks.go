package target

import (
	"github.com/dshills/buildtarget/internal/hook"
	"github.com/dshills/buildtarget/internal/project"
)

// BuildContext identifies a target and the build type being prepared.
type BuildContext struct {
	Target    Target
	BuildType BuildType
}

// Hooks holds the reducer seams of the resolver.
type Hooks struct {
	// TargetLoad runs over every resolved target before it is stored.
	TargetLoad *hook.Reducer[Target, *project.Settings]
	// EnvironmentVariables runs over the variables read from dotenv files.
	EnvironmentVariables *hook.Reducer[map[string]string, BuildContext]
	// CopyFiles runs over the files a target copies.
	CopyFiles *hook.Reducer[[]CopyItem, BuildContext]
	// ProjectFilesToCopy runs over the project files copied on distribution.
	ProjectFilesToCopy *hook.Reducer[[]CopyItem, *project.Settings]
}

// NewHooks creates an empty set of seams.
func NewHooks() *Hooks {
	return &Hooks{
		TargetLoad:           hook.NewReducer[Target, *project.Settings](hook.TargetLoad),
		EnvironmentVariables: hook.NewReducer[map[string]string, BuildContext](hook.TargetEnvironmentVariables),
		CopyFiles:            hook.NewReducer[[]CopyItem, BuildContext](hook.TargetCopyFiles),
		ProjectFilesToCopy:   hook.NewReducer[[]CopyItem, *project.Settings](hook.ProjectFilesToCopy),
	}
}
