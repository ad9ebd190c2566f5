package store_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/store"
	"github.com/hvlab/guest-harness/internal/store/migrations"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
)

func newRun(test string, outcome models.TestOutcome) models.TestRun {
	now := time.Now().UTC().Truncate(time.Second)
	return models.TestRun{
		ID:         uuid.New(),
		TestName:   test,
		Target:     "vm-01",
		Iteration:  1,
		Outcome:    outcome,
		Message:    "",
		LogDir:     "/tmp/logs",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

var _ = Describe("RunStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty run store
		// When we ask for a run by id
		// Then it should return RunNotFoundError
		It("should return RunNotFoundError when the run does not exist", func() {
			_, err := s.Runs().Get(ctx, uuid.New())

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a recorded run
		// When we retrieve it by id
		// Then all fields round-trip
		It("should return a saved run", func() {
			run := newRun("kvp-basic", models.OutcomeCompleted)
			Expect(s.Runs().Create(ctx, run)).To(Succeed())

			got, err := s.Runs().Get(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(run.ID))
			Expect(got.TestName).To(Equal("kvp-basic"))
			Expect(got.Outcome).To(Equal(models.OutcomeCompleted))
			Expect(got.Target).To(Equal("vm-01"))
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			Expect(s.Runs().Create(ctx, newRun("kvp-basic", models.OutcomeCompleted))).To(Succeed())
			Expect(s.Runs().Create(ctx, newRun("xdp-capture", models.OutcomeFailed))).To(Succeed())
			Expect(s.Runs().Create(ctx, newRun("hibernate", models.OutcomeAborted))).To(Succeed())
		})

		It("should list all runs", func() {
			runs, err := s.Runs().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(3))
		})

		It("should filter by outcome", func() {
			runs, err := s.Runs().List(ctx, store.ByOutcome("failed"))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].TestName).To(Equal("xdp-capture"))
		})

		It("should filter by test name", func() {
			runs, err := s.Runs().List(ctx, store.ByTest("kvp-basic", "hibernate"))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
		})

		It("should paginate", func() {
			runs, err := s.Runs().List(ctx, store.WithLimit(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))

			runs, err = s.Runs().List(ctx, store.WithLimit(2), store.WithOffset(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
		})
	})

	Context("Count", func() {
		It("should count with the same filters as List", func() {
			Expect(s.Runs().Create(ctx, newRun("kvp-basic", models.OutcomeCompleted))).To(Succeed())
			Expect(s.Runs().Create(ctx, newRun("kvp-basic", models.OutcomeFailed))).To(Succeed())

			total, err := s.Runs().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(2))

			failed, err := s.Runs().Count(ctx, store.ByOutcome("failed"))
			Expect(err).NotTo(HaveOccurred())
			Expect(failed).To(Equal(1))
		})
	})
})
