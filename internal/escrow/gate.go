package escrow

import "github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"

// Gate answers role questions about a caller. It holds no state.
type Gate struct{}

func (Gate) IsOwner(cfg *models.PlatformConfig, caller models.Address) bool {
	return cfg != nil && !caller.IsZero() && cfg.Owner == caller
}

func (Gate) IsJobClient(job *models.Job, caller models.Address) bool {
	return job != nil && !caller.IsZero() && job.Client == caller
}

func (Gate) IsJobArtisan(job *models.Job, caller models.Address) bool {
	return job != nil && !caller.IsZero() && job.Artisan == caller
}

func (g Gate) requireOwner(cfg *models.PlatformConfig, caller models.Address) error {
	if !g.IsOwner(cfg, caller) {
		return ErrUnauthorized
	}
	return nil
}

func (g Gate) requireClient(job *models.Job, caller models.Address) error {
	if !g.IsJobClient(job, caller) {
		return ErrUnauthorized
	}
	return nil
}

func (g Gate) requireArtisan(job *models.Job, caller models.Address) error {
	if !g.IsJobArtisan(job, caller) {
		return ErrUnauthorized
	}
	return nil
}
