package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("should pass a valid employee id", func() {
		Expect(validation.ValidateEmployeeID("EMP001")).To(BeNil())
	})

	It("should reject an empty employee id", func() {
		err := validation.ValidateEmployeeID("")
		Expect(err).NotTo(BeNil())
		Expect(err.StatusCode).To(Equal(400))
		Expect(err.Error()).To(Equal("employee_id is required"))
	})

	It("should reject an overlong employee id", func() {
		err := validation.ValidateEmployeeID(strings.Repeat("x", 256))
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("must not exceed 255"))
	})

	It("should collect errors from several fields", func() {
		v := validation.NewValidator()
		v.Field("employee_id", "").Required()
		v.Field("days", 45).MaxInt(30, internal.ErrCodeRangeTooLong)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		details, ok := err.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[1].Code).To(Equal(string(internal.ErrCodeRangeTooLong)))
	})

	It("should reject an end date before the start date", func() {
		start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		v := validation.NewValidator()
		v.Field("end_date", start.AddDate(0, 0, -1)).NotBefore(start, "start_date")

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.GetDetailedMessage()).To(Equal("end_date must not be before start_date"))
	})
})
