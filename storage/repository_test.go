package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
)

func TestInMemoryRepository(t *testing.T) {
	t.Run("pipeline versions are found by id", func(t *testing.T) {
		repo := NewInMemoryRepository()
		version := &domain.PipelineVersion{ID: 0}
		repo.Add(version)

		assert.Same(t, version, repo.PipelineVersionByID(0))
		assert.Nil(t, repo.PipelineVersionByID(1))
	})

	t.Run("revisions are listed per version in insertion order", func(t *testing.T) {
		repo := NewInMemoryRepository()
		versionA := &domain.PipelineVersion{ID: 0}
		versionB := &domain.PipelineVersion{ID: 1}
		revisionA0 := &domain.PipelineVersionRevision{UUID: "a0", ID: 0, PipelineVersion: versionA}
		revisionA1 := &domain.PipelineVersionRevision{UUID: "a1", ID: 1, PipelineVersion: versionA}
		revisionB0 := &domain.PipelineVersionRevision{UUID: "b0", ID: 0, PipelineVersion: versionB}

		repo.Add(revisionA0)
		repo.Add(revisionB0)
		repo.Add(revisionA1)

		revisions := repo.PipelineVersionRevisions(versionA)
		require.Len(t, revisions, 2)
		assert.Same(t, revisionA0, revisions[0])
		assert.Same(t, revisionA1, revisions[1])

		assert.Same(t, revisionA1, repo.LastPipelineVersionRevision(versionA))
		assert.Same(t, revisionA0, repo.PipelineVersionRevisionByID(versionA, 0))
		assert.Nil(t, repo.PipelineVersionRevisionByID(versionB, 7))
	})

	t.Run("creations are found through their version", func(t *testing.T) {
		repo := NewInMemoryRepository()
		version := &domain.PipelineVersion{ID: 0}
		revision := &domain.PipelineVersionRevision{UUID: "r0", PipelineVersion: version}
		creation := &domain.PipelineVersionCreation{UUID: "c0", PipelineVersionRevision: revision}
		repo.Add(creation)

		assert.Same(t, creation, repo.PipelineVersionCreationByVersion(version))
		assert.Nil(t, repo.PipelineVersionCreationByVersion(&domain.PipelineVersion{ID: 5}))
	})

	t.Run("changes are listed per revision", func(t *testing.T) {
		repo := NewInMemoryRepository()
		revision := &domain.PipelineVersionRevision{UUID: "r1"}
		first := &domain.PipelineChange{UUID: "c1", PipelineVersionRevision: revision}
		second := &domain.PipelineChange{UUID: "c2", PipelineVersionRevision: revision}

		repo.Add(first)
		repo.Add(second)

		assert.Len(t, repo.PipelineChanges(revision), 2)
		assert.Same(t, second, repo.LastPipelineChange(revision))
		assert.Nil(t, repo.LastPipelineChange(&domain.PipelineVersionRevision{UUID: "other"}))
	})

	t.Run("operator revisions are found by uuid", func(t *testing.T) {
		repo := NewInMemoryRepository()
		revision := &domain.OperatorRevision{UUID: "op-1"}
		repo.Add(revision)

		assert.Same(t, revision, repo.OperatorRevisionByUUID("op-1"))
		assert.Nil(t, repo.OperatorRevisionByUUID("op-2"))
	})

	t.Run("clear drops everything", func(t *testing.T) {
		repo := NewInMemoryRepository()
		repo.Add(&domain.PipelineVersion{ID: 0})
		repo.Add(&domain.Connection{ID: 9})

		repo.Clear()

		assert.Empty(t, repo.PipelineVersions())
		assert.Nil(t, repo.PipelineVersionByID(0))
	})
}
