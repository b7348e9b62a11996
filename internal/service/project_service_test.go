package service

import (
	"context"
	"math"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/testutil"
	"go.uber.org/zap"
)

func setupProjectTest(t *testing.T) (*ProjectService, *repository.Repositories, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewProjectService(repos.Project, zap.NewNop()), repos, context.Background()
}

func TestTaskProgressRollsUpToPhaseAndProject(t *testing.T) {
	svc, repos, ctx := setupProjectTest(t)

	p, err := svc.Create(ctx, "user-manager", &CreateProjectRequest{
		Code: "PRJ-301", Name: "滨江商务楼", ManagerID: "user-manager",
	})
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	ph, err := svc.CreatePhase(ctx, p.ID, &CreatePhaseRequest{Name: "主体结构", Sequence: 1})
	if err != nil {
		t.Fatalf("Create phase failed: %v", err)
	}

	t1, err := svc.CreateTask(ctx, ph.ID, "user-manager", &CreateTaskRequest{Name: "基坑开挖"})
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	t2, err := svc.CreateTask(ctx, ph.ID, "user-manager", &CreateTaskRequest{Name: "桩基施工"})
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}

	if _, err := svc.UpdateTaskProgress(ctx, t1.ID, 100); err != nil {
		t.Fatalf("UpdateTaskProgress failed: %v", err)
	}
	if _, err := svc.UpdateTaskProgress(ctx, t2.ID, 50); err != nil {
		t.Fatalf("UpdateTaskProgress failed: %v", err)
	}

	// Unweighted tasks: phase = mean(100, 50) = 75
	phase, _ := repos.Project.FindPhaseByID(ctx, ph.ID)
	if math.Abs(phase.Progress-75) > 1e-9 {
		t.Errorf("Expected phase progress 75, got %v", phase.Progress)
	}
	if phase.Status != entity.ProgressStatusInProgress {
		t.Errorf("Expected phase in_progress, got %s", phase.Status)
	}

	// Single phase: project mirrors phase progress
	project, _ := repos.Project.FindByID(ctx, p.ID)
	if math.Abs(project.Progress-75) > 1e-9 {
		t.Errorf("Expected project progress 75, got %v", project.Progress)
	}
}

func TestWeightedPhaseRollupAndCompletion(t *testing.T) {
	svc, repos, ctx := setupProjectTest(t)

	p, _ := svc.Create(ctx, "user-manager", &CreateProjectRequest{
		Code: "PRJ-302", Name: "地铁站改造", ManagerID: "user-manager",
	})

	ph1, _ := svc.CreatePhase(ctx, p.ID, &CreatePhaseRequest{Name: "拆除", Sequence: 1, Weight: fp(0.3)})
	ph2, _ := svc.CreatePhase(ctx, p.ID, &CreatePhaseRequest{Name: "重建", Sequence: 2, Weight: fp(0.7)})

	t1, _ := svc.CreateTask(ctx, ph1.ID, "user-manager", &CreateTaskRequest{Name: "围挡搭设"})
	t2, _ := svc.CreateTask(ctx, ph2.ID, "user-manager", &CreateTaskRequest{Name: "主体施工"})

	svc.UpdateTaskProgress(ctx, t1.ID, 100)
	svc.UpdateTaskProgress(ctx, t2.ID, 100)

	// 100*0.3 + 100*0.7 = 100, project completes and records actual end
	project, _ := repos.Project.FindByID(ctx, p.ID)
	if math.Abs(project.Progress-100) > 1e-9 {
		t.Errorf("Expected project progress 100, got %v", project.Progress)
	}
	if project.Status != entity.ProgressStatusCompleted {
		t.Errorf("Expected completed, got %s", project.Status)
	}
	if project.ActualEnd == nil {
		t.Errorf("Expected actual_end to be set on completion")
	}

	task, _ := repos.Project.FindTaskByID(ctx, t1.ID)
	if task.CompletedAt == nil {
		t.Errorf("Expected completed_at on finished task")
	}
}

func TestUpdateTaskProgressValidation(t *testing.T) {
	svc, _, ctx := setupProjectTest(t)

	if _, err := svc.UpdateTaskProgress(ctx, "task-nope", 150); err == nil {
		t.Errorf("Expected validation error for progress > 100")
	}
	if _, err := svc.UpdateTaskProgress(ctx, "task-nope", -1); err == nil {
		t.Errorf("Expected validation error for negative progress")
	}
}
