package deps

import (
	"github.com/tryanzu/overflow/core/config"
)

func IgniteConfig(d Deps) (Deps, error) {
	c, err := config.Load(ConfigFile)
	if err != nil {
		return d, err
	}
	d.ConfigProvider = &c
	return d, nil
}
