package deps

// ConfigFile to load. Empty falls back to CONFIG_FILE and then ./config.yaml.
var ConfigFile string

// An ignitor takes a Container and injects bootstraped dependencies.
type Ignitor func(Deps) (Deps, error)

// Bootstrap runs ignitors in order to fulfill the deps container.
func Bootstrap(ignitors ...Ignitor) (Deps, error) {
	if len(ignitors) == 0 {
		ignitors = []Ignitor{
			IgniteConfig,
			IgniteLogger,
			IgniteMongoDB,
			IgniteLedisDB,
			IgniteRedis,
			IgniteSentry,
			IgniteStores,
		}
	}
	var (
		container = Deps{}
		err       error
	)
	for _, fn := range ignitors {
		container, err = fn(container)
		if err != nil {
			container.Close()
			return Deps{}, err
		}
	}
	return container, nil
}
