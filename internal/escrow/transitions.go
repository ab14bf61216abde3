package escrow

import "github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"

// successors is the whole job lifecycle. No other move is legal.
func successors(s models.JobStatus) []models.JobStatus {
	switch s {
	case models.JobActive:
		return []models.JobStatus{models.JobCompleted, models.JobCancelled, models.JobClaimedByArtisan}
	case models.JobCompleted:
		return []models.JobStatus{models.JobWithdrawn}
	case models.JobClaimedByArtisan:
		return []models.JobStatus{models.JobDisputed, models.JobWithdrawn}
	case models.JobWithdrawn, models.JobDisputed, models.JobCancelled:
		return nil
	}
	panic("escrow: unhandled job status " + s.String())
}

func canTransition(from, to models.JobStatus) bool {
	for _, s := range successors(from) {
		if s == to {
			return true
		}
	}
	return false
}
