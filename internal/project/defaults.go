package project

// Defaults returns the code-defined project settings. Every call returns a
// fresh map.
func Defaults() map[string]any {
	return map[string]any{
		"paths": map[string]any{
			"source": "src",
			"build":  "dist",
			"output": "",
		},
		"targetsTemplates": map[string]any{
			"node":    nodeTemplate(),
			"browser": browserTemplate(),
		},
		"targets": map[string]any{},
		"copy": map[string]any{
			"enabled": false,
			"items":   []any{},
		},
		"version": map[string]any{
			"defineOn":            "process.env.VERSION",
			"environmentVariable": "VERSION",
			"revision": map[string]any{
				"enabled":  false,
				"copy":     true,
				"filename": "revision",
			},
		},
		"watch": map[string]any{
			"poll": false,
		},
	}
}

func dotEnvDefaults() map[string]any {
	return map[string]any{
		"enabled": true,
		"files": []any{
			".env.[target-name].[build-type]",
			".env.[target-name]",
			".env.[build-type]",
			".env",
		},
		"extend":    true,
		"overwrite": false,
	}
}

func nodeTemplate() map[string]any {
	return map[string]any{
		"type":         "node",
		"bundle":       false,
		"transpile":    false,
		"engine":       "webpack",
		"hasFolder":    true,
		"createFolder": false,
		"folder":       "",
		"entry": map[string]any{
			"default":     "index.js",
			"development": nil,
			"production":  nil,
		},
		"output": map[string]any{
			"default": map[string]any{
				"js":     "[target-name].js",
				"fonts":  "statics/fonts/[name].[hash].[ext]",
				"css":    "statics/styles/[target-name].[hash].css",
				"images": "statics/images/[name].[hash].[ext]",
			},
			"development": map[string]any{
				"fonts":  "statics/fonts/[name].[ext]",
				"css":    "statics/styles/[target-name].css",
				"images": "statics/images/[name].[ext]",
			},
			"production": nil,
		},
		"typeScript":       false,
		"flow":             false,
		"library":          false,
		"framework":        nil,
		"cleanBeforeBuild": true,
		"runOnDevelopment": false,
		"copy":             []any{},
		"dotEnv":           dotEnvDefaults(),
	}
}

func browserTemplate() map[string]any {
	return map[string]any{
		"type":         "browser",
		"bundle":       true,
		"transpile":    true,
		"engine":       "webpack",
		"hasFolder":    true,
		"createFolder": true,
		"folder":       "",
		"entry": map[string]any{
			"default":     "index.js",
			"development": nil,
			"production":  nil,
		},
		"output": map[string]any{
			"default": map[string]any{
				"js":     "statics/js/[target-name].[hash].js",
				"fonts":  "statics/fonts/[name]/[name].[hash].[ext]",
				"css":    "statics/styles/[target-name].[hash].css",
				"images": "statics/images/[name].[hash].[ext]",
			},
			"development": map[string]any{
				"js":     "statics/js/[target-name].js",
				"fonts":  "statics/fonts/[name]/[name].[ext]",
				"css":    "statics/styles/[target-name].css",
				"images": "statics/images/[name].[ext]",
			},
			"production": nil,
		},
		"html": map[string]any{
			"default":  "index.html",
			"template": nil,
			"filename": nil,
		},
		"typeScript":       false,
		"flow":             false,
		"library":          false,
		"framework":        nil,
		"cleanBeforeBuild": true,
		"runOnDevelopment": false,
		"copy":             []any{},
		"dotEnv":           dotEnvDefaults(),
		"configuration": map[string]any{
			"enabled":             false,
			"default":             nil,
			"path":                "config/",
			"hasFolder":           true,
			"environmentVariable": "CONFIG",
			"loadFromEnvironment": true,
			"filenameFormat":      "[target-name].[configuration-name].config",
			"envPrefix":           "",
		},
	}
}
