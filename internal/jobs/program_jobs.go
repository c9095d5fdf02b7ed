package jobs

import (
	"context"
	"time"

	"ab-eam-backend/internal/domain"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository"
)

// ProgramLifecycle stops live programs whose end date has passed and
// deactivates clients of programs that are no longer live.
func (jr *JobRunner) ProgramLifecycle() {
	jr.runWithRecovery("program_lifecycle", func() {
		ctx := context.Background()
		jr.stopEndedPrograms(ctx)
		jr.deactivateClientsOfStoppedPrograms(ctx)
	})
}

// programsByStatus collects every page of programs in the given status
// before the caller mutates any of them. Paging while flipping rows out
// of the status would shift later rows into already-visited pages.
func (jr *JobRunner) programsByStatus(ctx context.Context, status domain.ProgramStatus) ([]domain.Program, error) {
	var all []domain.Program
	page := repository.PageRequest{Page: 1, Limit: 100}
	for {
		programs, pagination, err := jr.store.ProgramRepository.FindByStatus(ctx, status, page)
		if err != nil {
			return nil, err
		}
		all = append(all, programs...)
		if page.Page >= pagination.Pages {
			return all, nil
		}
		page.Page++
	}
}

func (jr *JobRunner) stopEndedPrograms(ctx context.Context) {
	today := time.Now().UTC().Format("2006-01-02")

	programs, err := jr.programsByStatus(ctx, domain.ProgramStatusLive)
	if err != nil {
		logger.Error("Failed to list live programs", "error", err)
		return
	}

	for _, program := range programs {
		if !program.HasEnded(today) {
			continue
		}
		if err := program.Stop(); err != nil {
			logger.Error("Failed to stop ended program", "program_id", program.ID, "error", err)
			continue
		}
		if _, err := jr.store.ProgramRepository.Update(ctx, program.ID, map[string]any{
			"status":     string(program.Status),
			"updated_at": program.UpdatedAt.Format(time.RFC3339Nano),
		}); err != nil {
			logger.Error("Failed to persist stopped program", "program_id", program.ID, "error", err)
			continue
		}
		logger.Info("Stopped ended program", "program_id", program.ID, "end_date", program.EndDate)
	}
}

func (jr *JobRunner) deactivateClientsOfStoppedPrograms(ctx context.Context) {
	now := time.Now().UTC()

	for _, status := range []domain.ProgramStatus{domain.ProgramStatusStopped, domain.ProgramStatusArchived} {
		programs, err := jr.programsByStatus(ctx, status)
		if err != nil {
			logger.Error("Failed to list programs", "status", status, "error", err)
			continue
		}

		for _, program := range programs {
			jr.deactivateProgramClients(ctx, program.ID, now)
		}
	}
}

// deactivateProgramClients pages through every client of the program.
// Toggling is_active does not move rows between pages, so the cursor
// can advance while updating.
func (jr *JobRunner) deactivateProgramClients(ctx context.Context, programID string, now time.Time) {
	page := repository.PageRequest{Page: 1, Limit: 1000}
	for {
		clients, pagination, err := jr.store.ClientRepository.FindByProgram(ctx, programID, page)
		if err != nil {
			logger.Error("Failed to list program clients", "program_id", programID, "error", err)
			return
		}

		for _, client := range clients {
			if !client.IsActive {
				continue
			}
			if _, err := jr.store.ClientRepository.Update(ctx, client.ID, map[string]any{
				"is_active":  false,
				"updated_at": now.Format(time.RFC3339Nano),
			}); err != nil {
				logger.Error("Failed to deactivate client", "client_id", client.ID, "error", err)
				continue
			}
			logger.Info("Deactivated client of inactive program", "client_id", client.ID, "program_id", programID)
		}

		if page.Page >= pagination.Pages {
			return
		}
		page.Page++
	}
}
