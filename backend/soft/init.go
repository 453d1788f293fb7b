package soft

import "github.com/gogpu/uiglue/backend"

func init() {
	backend.Register(backend.Soft, func(cfg backend.Config) (backend.Device, error) {
		dev, err := New(Config{Width: cfg.Width, Height: cfg.Height})
		if err != nil {
			return nil, err
		}
		return dev, nil
	})
}
