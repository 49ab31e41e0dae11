package target

import (
	"strings"
)

// LoadDotEnv reads the environment files of a target for a build type and
// returns their variables. With inject the variables are also set in the
// process environment, following the target's overwrite setting.
func (r *Resolver) LoadDotEnv(t Target, bt BuildType, inject bool) (map[string]string, error) {
	if !t.DotEnv.Enabled || len(t.DotEnv.Files) == 0 {
		return map[string]string{}, nil
	}
	if _, err := ParseBuildType(string(bt)); err != nil {
		return nil, newError(t.Name, "load env", err)
	}

	placeholders := strings.NewReplacer("[target-name]", t.Name, "[build-type]", string(bt))
	files := make([]string, len(t.DotEnv.Files))
	for i, pattern := range t.DotEnv.Files {
		files[i] = r.abs(placeholders.Replace(pattern))
	}

	res, err := r.env.Load(files, t.DotEnv.Extend)
	if err != nil {
		return nil, newError(t.Name, "load env", err)
	}
	r.logger.Debug("loaded env files", "target", t.Name, "files", res.Loaded)

	vars := r.hooks.EnvironmentVariables.Reduce(res.Variables, BuildContext{Target: t, BuildType: bt})
	if vars == nil {
		vars = map[string]string{}
	}

	if inject {
		if err := r.env.Inject(vars, t.DotEnv.Overwrite); err != nil {
			return nil, newError(t.Name, "load env", err)
		}
	}
	return vars, nil
}
