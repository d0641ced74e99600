package meal_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/events"
	"github.com/frahmantamala/meal-scan/internal/employee"
	"github.com/frahmantamala/meal-scan/internal/meal"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	"github.com/frahmantamala/meal-scan/internal/scan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMeal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Meal Engine Suite")
}

type fakeDirectory struct {
	employees map[string]string
	err       error
}

func (f *fakeDirectory) FindByEmployeeID(_ context.Context, id string) (*employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.employees[id]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return &employee.Employee{EmployeeID: id, Name: name}, nil
}

type dayKey struct {
	employeeID string
	date       string
}

func keyOf(id string, d time.Time) dayKey {
	return dayKey{employeeID: id, date: d.Format("2006-01-02")}
}

type fakeScanLedger struct {
	mu        sync.Mutex
	records   map[dayKey][]scan.Record
	listErr   error
	appendErr error
	// beforeAppend lets a test slip in a competing write between the read
	// and the write of the engine.
	beforeAppend func(id string, d time.Time, kind scan.Kind)
}

func newFakeScanLedger() *fakeScanLedger {
	return &fakeScanLedger{records: make(map[dayKey][]scan.Record)}
}

func (f *fakeScanLedger) ListScansForDate(_ context.Context, id string, d time.Time) (scan.DayState, error) {
	if f.listErr != nil {
		return scan.DayState{}, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := append([]scan.Record(nil), f.records[keyOf(id, d)]...)
	return scan.DayState{EmployeeID: id, BusinessDate: d, Records: recs}, nil
}

func (f *fakeScanLedger) AppendScan(_ context.Context, id string, d time.Time, kind scan.Kind) (*scan.Record, error) {
	if f.beforeAppend != nil {
		hook := f.beforeAppend
		f.beforeAppend = nil
		hook(id, d, kind)
	}
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(id, d, kind)
}

func (f *fakeScanLedger) insert(id string, d time.Time, kind scan.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = f.insertLocked(id, d, kind)
}

func (f *fakeScanLedger) insertLocked(id string, d time.Time, kind scan.Kind) (*scan.Record, error) {
	k := keyOf(id, d)
	for _, r := range f.records[k] {
		if r.Kind == kind {
			return nil, scan.ErrDuplicateKind
		}
	}
	rec := scan.Record{EmployeeID: id, BusinessDate: d, Kind: kind, RecordedAt: time.Now()}
	f.records[k] = append(f.records[k], rec)
	return &rec, nil
}

func (f *fakeScanLedger) count(id string, d time.Time, kind scan.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records[keyOf(id, d)] {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

type fakeGrantLedger struct {
	mu           sync.Mutex
	grants       map[dayKey]*overtime.Permission
	names        map[string]string
	err          error
	beforeCreate func(id string, d time.Time)
	clockTick    time.Time
}

func newFakeGrantLedger(names map[string]string) *fakeGrantLedger {
	return &fakeGrantLedger{
		grants:    make(map[dayKey]*overtime.Permission),
		names:     names,
		clockTick: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeGrantLedger) FindGrant(_ context.Context, id string, d time.Time) (*overtime.Permission, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grants[keyOf(id, d)], nil
}

func (f *fakeGrantLedger) Grant(_ context.Context, id string, d time.Time, by string) (*overtime.Permission, error) {
	if f.beforeCreate != nil {
		hook := f.beforeCreate
		f.beforeCreate = nil
		hook(id, d)
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grantLocked(id, d, by)
}

func (f *fakeGrantLedger) grantLocked(id string, d time.Time, by string) (*overtime.Permission, error) {
	k := keyOf(id, d)
	if _, ok := f.grants[k]; ok {
		return nil, overtime.ErrGrantAlreadyExists
	}
	f.clockTick = f.clockTick.Add(time.Minute)
	p := &overtime.Permission{EmployeeID: id, BusinessDate: d, GrantedBy: by, GrantedAt: f.clockTick}
	f.grants[k] = p
	return p, nil
}

func (f *fakeGrantLedger) add(id string, d time.Time, by string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = f.grantLocked(id, d, by)
}

func (f *fakeGrantLedger) Revoke(_ context.Context, id string, d time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(id, d)
	if _, ok := f.grants[k]; !ok {
		return false, nil
	}
	delete(f.grants, k)
	return true, nil
}

func (f *fakeGrantLedger) RevokeAllForDate(_ context.Context, d time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.grants {
		if k.date == d.Format("2006-01-02") {
			delete(f.grants, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeGrantLedger) ListForDate(_ context.Context, d time.Time) ([]overtime.GrantSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []overtime.GrantSummary
	for k, p := range f.grants {
		if k.date != d.Format("2006-01-02") {
			continue
		}
		out = append(out, overtime.GrantSummary{EmployeeID: p.EmployeeID, Name: f.names[p.EmployeeID], GrantedBy: p.GrantedBy, GrantedAt: p.GrantedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.After(out[j].GrantedAt) })
	return out, nil
}

type fixedCalendar struct{ date time.Time }

func (c *fixedCalendar) CurrentBusinessDate() time.Time { return c.date }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func expectAppError(err error, target *internal.AppError) *internal.AppError {
	ExpectWithOffset(1, err).To(HaveOccurred())
	ExpectWithOffset(1, errors.Is(err, target)).To(BeTrue(), "expected %s, got %v", target.Code, err)
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue())
	return appErr
}

var _ = Describe("Meal Service", func() {
	var (
		ctx       context.Context
		names     map[string]string
		directory *fakeDirectory
		scans     *fakeScanLedger
		grants    *fakeGrantLedger
		cal       *fixedCalendar
		publisher *recordingPublisher
		service   *meal.Service
		today     time.Time
		admin     internal.Actor
		operator  internal.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		names = map[string]string{
			"EMP100": "Rina Kartika",
			"EMP101": "Dewi Lestari",
		}
		directory = &fakeDirectory{employees: names}
		scans = newFakeScanLedger()
		grants = newFakeGrantLedger(names)
		today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		cal = &fixedCalendar{date: today}
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = meal.NewService(directory, scans, grants, cal, publisher, logger)
		admin = internal.Actor{Username: "admin", IsAdmin: true}
		operator = internal.Actor{Username: "production"}
	})

	submit := func(id string) (*meal.ScanResult, error) {
		return service.SubmitScan(ctx, meal.SubmitScanInput{EmployeeID: id})
	}

	grant := func(id string) (*meal.GrantResult, error) {
		return service.GrantOvertimePermission(ctx, meal.GrantInput{EmployeeID: id, GrantedBy: "production"})
	}

	Describe("the daily scan lifecycle", func() {
		It("should walk through scenarios A to E", func() {
			By("A: the first scan is a normal meal")
			result, err := submit("EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(scan.KindNormal))
			Expect(result.Code).To(Equal(meal.CodeNormalSuccess))
			Expect(result.ScanCount).To(Equal(1))
			Expect(result.Employee).To(Equal(employee.Summary{EmployeeID: "EMP100", Name: "Rina Kartika"}))

			By("B: a second scan without a grant is rejected")
			_, err = submit("EMP100")
			appErr := expectAppError(err, internal.ErrOvertimeNotRegistered)
			Expect(appErr.StatusCode).To(Equal(403))
			details, ok := appErr.Details.(meal.RejectionDetails)
			Expect(ok).To(BeTrue())
			Expect(details.Employee.Name).To(Equal("Rina Kartika"))

			By("C: after a grant the second scan is the overtime meal")
			_, err = grant("EMP100")
			Expect(err).NotTo(HaveOccurred())
			result, err = submit("EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(scan.KindOvertime))
			Expect(result.Code).To(Equal(meal.CodeOvertimeSuccess))
			Expect(result.ScanCount).To(Equal(2))

			By("D: a third scan is rejected")
			_, err = submit("EMP100")
			expectAppError(err, internal.ErrAlreadyScannedOvertime)

			By("E: a second grant on the same day is rejected with the existing grant")
			_, err = grant("EMP100")
			appErr = expectAppError(err, internal.ErrPermissionAlreadyExists)
			Expect(appErr.StatusCode).To(Equal(409))
			details = appErr.Details.(meal.RejectionDetails)
			Expect(details.ExistingGrant).NotTo(BeNil())
			Expect(details.ExistingGrant.GrantedBy).To(Equal("production"))

			Expect(scans.count("EMP100", today, scan.KindNormal)).To(Equal(1))
			Expect(scans.count("EMP100", today, scan.KindOvertime)).To(Equal(1))
		})

		It("F: should reject unknown employees on every operation", func() {
			_, err := submit("EMP999")
			expectAppError(err, internal.ErrEmployeeNotFound)

			_, err = service.ConfirmOvertimeScan(ctx, meal.ConfirmOvertimeInput{EmployeeID: "EMP999"})
			expectAppError(err, internal.ErrEmployeeNotFound)

			_, err = grant("EMP999")
			expectAppError(err, internal.ErrEmployeeNotFound)

			_, err = service.DayStatus(ctx, "EMP999")
			expectAppError(err, internal.ErrEmployeeNotFound)

			Expect(scans.records).To(BeEmpty())
			Expect(grants.grants).To(BeEmpty())
		})

		It("should keep rejecting a second scan while no grant exists", func() {
			_, err := submit("EMP100")
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				_, err = submit("EMP100")
				expectAppError(err, internal.ErrOvertimeNotRegistered)
			}
			Expect(scans.count("EMP100", today, scan.KindOvertime)).To(BeZero())
		})

		It("should treat a grant issued before the normal scan the same as one issued after", func() {
			_, err := grant("EMP101")
			Expect(err).NotTo(HaveOccurred())

			first, err := submit("EMP101")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Kind).To(Equal(scan.KindNormal))

			second, err := submit("EMP101")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Kind).To(Equal(scan.KindOvertime))
		})

		It("should start a fresh day on the next business date", func() {
			_, err := submit("EMP100")
			Expect(err).NotTo(HaveOccurred())
			grants.add("EMP100", today, "production")
			_, err = submit("EMP100")
			Expect(err).NotTo(HaveOccurred())

			cal.date = today.AddDate(0, 0, 1)
			result, err := submit("EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(scan.KindNormal))
			Expect(result.ScanCount).To(Equal(1))

			_, err = submit("EMP100")
			expectAppError(err, internal.ErrOvertimeNotRegistered)
		})

		It("should trim the employee id and reject blank input", func() {
			result, err := submit("  EMP100  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Employee.EmployeeID).To(Equal("EMP100"))

			_, err = submit("   ")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should publish an event per successful write", func() {
			_, _ = submit("EMP100")
			_, _ = grant("EMP100")
			_, _ = submit("EMP100")
			_, _ = submit("EMP100")

			Expect(publisher.types()).To(Equal([]string{
				events.EventTypeScanRecorded,
				events.EventTypeOvertimeGranted,
				events.EventTypeScanRecorded,
			}))
		})
	})

	Describe("ConfirmOvertimeScan", func() {
		confirm := func(id string) (*meal.ScanResult, error) {
			return service.ConfirmOvertimeScan(ctx, meal.ConfirmOvertimeInput{EmployeeID: id})
		}

		It("should require a normal scan first even when a grant exists", func() {
			grants.add("EMP100", today, "production")

			_, err := confirm("EMP100")
			expectAppError(err, internal.ErrNeedsNormalScanFirst)
			Expect(scans.records).To(BeEmpty())
		})

		It("should reject without a grant", func() {
			scans.insert("EMP100", today, scan.KindNormal)

			_, err := confirm("EMP100")
			expectAppError(err, internal.ErrOvertimeNotRegistered)
		})

		It("should record the overtime meal with a grant", func() {
			scans.insert("EMP100", today, scan.KindNormal)
			grants.add("EMP100", today, "production")

			result, err := confirm("EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(scan.KindOvertime))
			Expect(result.ScanCount).To(Equal(2))
		})

		It("should report an already taken overtime meal before a missing grant", func() {
			scans.insert("EMP100", today, scan.KindNormal)
			scans.insert("EMP100", today, scan.KindOvertime)

			_, err := confirm("EMP100")
			expectAppError(err, internal.ErrAlreadyScannedOvertime)
		})

		It("should agree with SubmitScan once a normal scan exists", func() {
			scans.insert("EMP100", today, scan.KindNormal)
			scans.insert("EMP101", today, scan.KindNormal)

			_, errSubmit := submit("EMP100")
			_, errConfirm := confirm("EMP101")
			Expect(errors.Is(errSubmit, internal.ErrOvertimeNotRegistered)).To(BeTrue())
			Expect(errors.Is(errConfirm, internal.ErrOvertimeNotRegistered)).To(BeTrue())
		})
	})

	Describe("races settled by the ledgers", func() {
		It("should map a lost overtime race to AlreadyScannedOvertime", func() {
			scans.insert("EMP100", today, scan.KindNormal)
			grants.add("EMP100", today, "production")
			scans.beforeAppend = func(id string, d time.Time, kind scan.Kind) {
				scans.insert(id, d, kind)
			}

			_, err := submit("EMP100")
			expectAppError(err, internal.ErrAlreadyScannedOvertime)
			Expect(scans.count("EMP100", today, scan.KindOvertime)).To(Equal(1))
		})

		It("should map a lost normal race to DuplicateScanKind", func() {
			scans.beforeAppend = func(id string, d time.Time, kind scan.Kind) {
				scans.insert(id, d, kind)
			}

			_, err := submit("EMP100")
			appErr := expectAppError(err, internal.ErrDuplicateScanKind)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(scans.count("EMP100", today, scan.KindNormal)).To(Equal(1))
		})

		It("should map a lost grant race to PermissionAlreadyExists", func() {
			grants.beforeCreate = func(id string, d time.Time) {
				grants.add(id, d, "warehouse")
			}

			_, err := grant("EMP100")
			appErr := expectAppError(err, internal.ErrPermissionAlreadyExists)
			details := appErr.Details.(meal.RejectionDetails)
			Expect(details.ExistingGrant).NotTo(BeNil())
			Expect(details.ExistingGrant.GrantedBy).To(Equal("warehouse"))
		})

		It("should never record more than one scan of each kind under concurrency", func() {
			grants.add("EMP100", today, "production")

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := submit("EMP100")
					if err != nil {
						_, ok := internal.IsAppError(err)
						Expect(ok).To(BeTrue(), "unexpected infrastructure error: %v", err)
					}
				}()
			}
			wg.Wait()

			Expect(scans.count("EMP100", today, scan.KindNormal)).To(Equal(1))
			Expect(scans.count("EMP100", today, scan.KindOvertime)).To(BeNumerically("<=", 1))
		})
	})

	Describe("grant administration", func() {
		It("should list today's grants most recent first", func() {
			_, err := grant("EMP100")
			Expect(err).NotTo(HaveOccurred())
			_, err = grant("EMP101")
			Expect(err).NotTo(HaveOccurred())
			grants.add("EMP100", today.AddDate(0, 0, -1), "production")

			list, err := service.ListTodaysGrants(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Count).To(Equal(2))
			Expect(list.Data[0].EmployeeID).To(Equal("EMP101"))
			Expect(list.Data[1].Name).To(Equal("Rina Kartika"))
			Expect(list.BusinessDate).To(Equal("2024-03-10"))
		})

		It("should refuse revocation by non-admins before touching the ledger", func() {
			grants.add("EMP100", today, "production")

			_, err := service.RevokeGrant(ctx, meal.RevokeInput{EmployeeID: "EMP100", Actor: operator})
			expectAppError(err, internal.ErrForbidden)

			_, err = service.RevokeAllGrantsForToday(ctx, operator)
			expectAppError(err, internal.ErrForbidden)

			Expect(grants.grants).To(HaveLen(1))
		})

		It("should report GrantNotFound when there is nothing to revoke", func() {
			_, err := service.RevokeGrant(ctx, meal.RevokeInput{EmployeeID: "EMP100", Actor: admin})
			appErr := expectAppError(err, internal.ErrGrantNotFound)
			Expect(appErr.StatusCode).To(Equal(404))
		})

		It("should revoke a grant and return the employee", func() {
			grants.add("EMP100", today, "production")

			result, err := service.RevokeGrant(ctx, meal.RevokeInput{EmployeeID: "EMP100", Actor: admin})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Employee.Name).To(Equal("Rina Kartika"))
			Expect(grants.grants).To(BeEmpty())
			Expect(publisher.types()).To(ContainElement(events.EventTypeOvertimeRevoked))
		})

		It("should keep an overtime scan already taken when its grant is revoked", func() {
			_, _ = submit("EMP100")
			_, _ = grant("EMP100")
			_, err := submit("EMP100")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RevokeGrant(ctx, meal.RevokeInput{EmployeeID: "EMP100", Actor: admin})
			Expect(err).NotTo(HaveOccurred())
			Expect(scans.count("EMP100", today, scan.KindOvertime)).To(Equal(1))

			_, err = submit("EMP100")
			expectAppError(err, internal.ErrAlreadyScannedOvertime)
		})

		It("should block the overtime meal once the grant is revoked", func() {
			_, _ = submit("EMP100")
			_, _ = grant("EMP100")
			_, err := service.RevokeGrant(ctx, meal.RevokeInput{EmployeeID: "EMP100", Actor: admin})
			Expect(err).NotTo(HaveOccurred())

			_, err = submit("EMP100")
			expectAppError(err, internal.ErrOvertimeNotRegistered)
		})

		It("should clear only today's grants and accept an empty day", func() {
			grants.add("EMP100", today, "production")
			grants.add("EMP101", today, "production")
			grants.add("EMP100", today.AddDate(0, 0, -1), "production")

			result, err := service.RevokeAllGrantsForToday(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.DeletedCount).To(Equal(int64(2)))
			Expect(grants.grants).To(HaveLen(1))

			result, err = service.RevokeAllGrantsForToday(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(result.DeletedCount).To(BeZero())
		})
	})

	Describe("DayStatus", func() {
		It("should describe each phase", func() {
			status, err := service.DayStatus(ctx, "EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Phase).To(Equal(scan.PhaseNoScan))

			_, _ = submit("EMP100")
			_, _ = grant("EMP100")
			status, err = service.DayStatus(ctx, "EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Phase).To(Equal(scan.PhaseNormalDone))
			Expect(status.HasGrant).To(BeTrue())
			Expect(status.ScanCount).To(Equal(1))

			_, _ = submit("EMP100")
			status, err = service.DayStatus(ctx, "EMP100")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Phase).To(Equal(scan.PhaseComplete))
		})
	})

	Describe("infrastructure failures", func() {
		It("should surface ledger failures as opaque non-business errors", func() {
			scans.listErr = errors.New("connection refused")

			_, err := submit("EMP100")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("connection refused"))
			_, isApp := internal.IsAppError(err)
			Expect(isApp).To(BeFalse())
		})

		It("should surface append failures", func() {
			scans.appendErr = errors.New("disk full")

			_, err := submit("EMP100")
			Expect(err).To(MatchError(ContainSubstring("disk full")))
		})

		It("should surface permission ledger failures", func() {
			scans.insert("EMP100", today, scan.KindNormal)
			grants.err = errors.New("timeout")

			_, err := submit("EMP100")
			Expect(err).To(MatchError(ContainSubstring("timeout")))

			_, err = service.ListTodaysGrants(ctx)
			Expect(err).To(MatchError(ContainSubstring("timeout")))
		})

		It("should surface directory failures", func() {
			directory.err = errors.New("directory offline")

			_, err := submit("EMP100")
			Expect(err).To(MatchError(ContainSubstring("directory offline")))
		})
	})
})
