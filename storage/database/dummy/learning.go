package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/learning"
)

type learningRepository struct {
	db *learningTable
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *DB) learning.Repository {
	return &learningRepository{db: db.learning}
}

// Modules

func (repo *learningRepository) CreateModule(ctx context.Context, mod learning.Module, exec ...core.DBExecutor) (learning.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.modPkCount++
	mod.ID = repo.db.modPkCount
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *learningRepository) QueryAllModules(ctx context.Context, exec ...core.DBExecutor) ([]learning.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]learning.Module, 0, len(repo.db.modules))
	for _, mod := range repo.db.modules {
		mods = append(mods, *mod)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	return mods, nil
}

func (repo *learningRepository) GetModuleByID(ctx context.Context, id int, exec ...core.DBExecutor) (learning.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return learning.Module{}, learning.ErrModuleNotFound
}

func (repo *learningRepository) UpdateModule(ctx context.Context, mod learning.Module, exec ...core.DBExecutor) (learning.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[mod.ID]; !ok {
		return learning.Module{}, learning.ErrModuleNotFound
	}
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *learningRepository) DeleteModule(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[id]; !ok {
		return learning.ErrModuleNotFound
	}
	delete(repo.db.modules, id)
	for qzID, qz := range repo.db.quizzes { // ON DELETE CASCADE
		if qz.ModuleID == id {
			delete(repo.db.quizzes, qzID)
		}
	}
	return nil
}

// Quizzes

func (repo *learningRepository) CreateQuiz(ctx context.Context, qz learning.Quiz, exec ...core.DBExecutor) (learning.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.quizPkCount++
	qz.ID = repo.db.quizPkCount
	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *learningRepository) GetQuizByID(ctx context.Context, id int, exec ...core.DBExecutor) (learning.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return *qz, nil
	}
	return learning.Quiz{}, learning.ErrQuizNotFound
}

func (repo *learningRepository) QueryQuizzesByModule(ctx context.Context, moduleID int, exec ...core.DBExecutor) ([]learning.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	quizzes := make([]learning.Quiz, 0)
	for _, qz := range repo.db.quizzes {
		if qz.ModuleID == moduleID {
			quizzes = append(quizzes, *qz)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (repo *learningRepository) UpdateQuiz(ctx context.Context, qz learning.Quiz, exec ...core.DBExecutor) (learning.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.quizzes[qz.ID]; !ok {
		return learning.Quiz{}, learning.ErrQuizNotFound
	}
	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *learningRepository) DeleteQuiz(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.quizzes[id]; !ok {
		return learning.ErrQuizNotFound
	}
	delete(repo.db.quizzes, id)
	return nil
}
