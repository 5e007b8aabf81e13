package guide_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/guide"
)

func TestGuideService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GuideService Suite")
}

// Mock repository for testing
type mockGuideRepository struct {
	buttons map[int64]*guide.Button
	tables  map[int64]*guide.Table
	nextID  int64
}

func newMockGuideRepository() *mockGuideRepository {
	return &mockGuideRepository{
		buttons: make(map[int64]*guide.Button),
		tables:  make(map[int64]*guide.Table),
		nextID:  1,
	}
}

func (m *mockGuideRepository) ListButtons(_ context.Context) ([]*guide.Button, error) {
	out := make([]*guide.Button, 0, len(m.buttons))
	for _, b := range m.buttons {
		clone := *b
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockGuideRepository) GetButton(_ context.Context, id int64) (*guide.Button, error) {
	b, ok := m.buttons[id]
	if !ok {
		return nil, guide.ErrButtonNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *mockGuideRepository) CreateButton(_ context.Context, b *guide.Button) error {
	b.ID = m.nextID
	m.nextID++
	clone := *b
	m.buttons[b.ID] = &clone
	return nil
}

func (m *mockGuideRepository) UpdateButton(_ context.Context, b *guide.Button) error {
	if _, ok := m.buttons[b.ID]; !ok {
		return guide.ErrButtonNotFound
	}
	clone := *b
	m.buttons[b.ID] = &clone
	return nil
}

func (m *mockGuideRepository) DeleteButton(_ context.Context, id int64) error {
	if _, ok := m.buttons[id]; !ok {
		return guide.ErrButtonNotFound
	}
	delete(m.buttons, id)
	delete(m.tables, id)
	return nil
}

func (m *mockGuideRepository) ReorderButtons(_ context.Context, orderedIDs []int64) error {
	for _, id := range orderedIDs {
		if _, ok := m.buttons[id]; !ok {
			return guide.ErrButtonNotFound
		}
	}
	for i, id := range orderedIDs {
		m.buttons[id].Position = i
	}
	return nil
}

func (m *mockGuideRepository) GetTable(_ context.Context, buttonID int64) (*guide.Table, error) {
	t, ok := m.tables[buttonID]
	if !ok {
		return nil, guide.ErrTableNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockGuideRepository) UpsertTable(_ context.Context, t *guide.Table) error {
	clone := *t
	m.tables[t.ButtonID] = &clone
	return nil
}

var _ = Describe("GuideService", func() {
	var (
		repo    *mockGuideRepository
		service *guide.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockGuideRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = guide.NewService(repo, logger)
		ctx = context.Background()
	})

	create := func(label string) *guide.Button {
		b, err := service.CreateButton(ctx, guide.ButtonDTO{Label: label})
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	Describe("CreateButton", func() {
		It("should append new buttons after the current last position", func() {
			first := create("Crédito Rural")
			second := create("Convênios")

			Expect(first.Position).To(Equal(0))
			Expect(second.Position).To(Equal(1))
		})

		It("should honor an explicit position", func() {
			pos := 5
			b, err := service.CreateButton(ctx, guide.ButtonDTO{Label: "Tarifas", Position: &pos})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Position).To(Equal(5))
		})

		It("should reject a blank label", func() {
			_, err := service.CreateButton(ctx, guide.ButtonDTO{Label: "   "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Reorder", func() {
		It("should rewrite positions to match the list order", func() {
			a := create("A")
			b := create("B")
			c := create("C")

			Expect(service.Reorder(ctx, guide.ReorderDTO{ButtonIDs: []int64{c.ID, a.ID, b.ID}})).To(Succeed())

			buttons, err := service.ListButtons(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(buttons[0].Label).To(Equal("C"))
			Expect(buttons[1].Label).To(Equal("A"))
			Expect(buttons[2].Label).To(Equal("B"))
		})

		It("should reject duplicate ids", func() {
			a := create("A")
			err := service.Reorder(ctx, guide.ReorderDTO{ButtonIDs: []int64{a.ID, a.ID}})
			Expect(err).To(HaveOccurred())
		})

		It("should fail on an unknown id", func() {
			err := service.Reorder(ctx, guide.ReorderDTO{ButtonIDs: []int64{999}})
			Expect(err).To(MatchError(guide.ErrButtonNotFound))
		})
	})

	Describe("Table", func() {
		It("should return an empty document when none was saved", func() {
			b := create("Tarifas")

			table, err := service.Table(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(table.Payload)).To(Equal("{}"))
		})

		It("should fail for an unknown button", func() {
			_, err := service.Table(ctx, 999)
			Expect(err).To(MatchError(guide.ErrButtonNotFound))
		})
	})

	Describe("SaveTable", func() {
		It("should store the payload verbatim", func() {
			b := create("Tarifas")
			payload := json.RawMessage(`{"rows":[["Serviço","Valor"],["TED","R$ 9,90"]]}`)

			saved, err := service.SaveTable(ctx, b.ID, guide.TableDTO{Payload: payload})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Payload).To(Equal(payload))

			table, err := service.Table(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Payload).To(Equal(payload))
		})

		It("should reject malformed JSON", func() {
			b := create("Tarifas")
			_, err := service.SaveTable(ctx, b.ID, guide.TableDTO{Payload: json.RawMessage(`{"rows":`)})
			Expect(err).To(HaveOccurred())
		})

		It("should fail for an unknown button", func() {
			_, err := service.SaveTable(ctx, 999, guide.TableDTO{Payload: json.RawMessage(`{}`)})
			Expect(err).To(MatchError(guide.ErrButtonNotFound))
		})
	})

	Describe("DeleteButton", func() {
		It("should drop the button and its table", func() {
			b := create("Tarifas")
			_, err := service.SaveTable(ctx, b.ID, guide.TableDTO{Payload: json.RawMessage(`{}`)})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteButton(ctx, b.ID)).To(Succeed())
			Expect(repo.tables).To(BeEmpty())
		})
	})
})
