package settings

import "context"

type (
	Repository interface {
		// GetSettings returns the stored settings merged over the defaults.
		GetSettings(ctx context.Context) (Settings, error)
		SaveSettings(ctx context.Context, s Settings) error
		// GetUISettings returns an empty document if none is stored.
		GetUISettings(ctx context.Context) (UISettings, error)
		SaveUISettings(ctx context.Context, s UISettings) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context) (Settings, error) {
	return svc.repo.GetSettings(ctx)
}

func (svc *Service) Update(ctx context.Context, us UpdateSettings) (Settings, error) {
	current, err := svc.repo.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	updated := merge(current, Settings(us))
	if err := svc.repo.SaveSettings(ctx, updated); err != nil {
		return Settings{}, err
	}
	return updated, nil
}

func (svc *Service) GetUI(ctx context.Context) (UISettings, error) {
	return svc.repo.GetUISettings(ctx)
}

func (svc *Service) SaveUI(ctx context.Context, s UISettings) (UISettings, error) {
	if s == nil {
		s = UISettings{}
	}
	if err := svc.repo.SaveUISettings(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
