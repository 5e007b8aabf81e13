package department_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/department"
)

func TestDepartment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Suite")
}

var _ = Describe("Registry", func() {
	It("should hold the eight fixed sections", func() {
		Expect(department.Registry).To(HaveLen(8))
	})

	It("should use unique codes and slugs", func() {
		codes := make(map[string]struct{})
		slugs := make(map[string]struct{})
		for _, d := range department.Registry {
			Expect(codes).NotTo(HaveKey(d.Code))
			Expect(slugs).NotTo(HaveKey(d.Slug))
			codes[d.Code] = struct{}{}
			slugs[d.Slug] = struct{}{}
		}
	})

	It("should match the claim prefixes", func() {
		for _, d := range department.Registry {
			Expect(authz.DepartmentPrefixes).To(ContainElement(d.Code))
		}
	})

	Describe("BySlug", func() {
		It("should resolve a known slug", func() {
			d, ok := department.BySlug("ciclo")
			Expect(ok).To(BeTrue())
			Expect(d.Code).To(Equal("Cc"))
			Expect(d.Name).To(Equal("Ciclo de Crédito"))
		})

		It("should miss on an unknown slug", func() {
			_, ok := department.BySlug("juridico")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ByCode", func() {
		It("should resolve a known prefix", func() {
			d, ok := department.ByCode("Pc")
			Expect(ok).To(BeTrue())
			Expect(d.Slug).To(Equal("pessoas-cultura"))
		})

		It("should miss on an unknown prefix", func() {
			_, ok := department.ByCode("Zz")
			Expect(ok).To(BeFalse())
		})
	})
})
