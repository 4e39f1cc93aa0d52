package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

type (
	// Renderer hands out isolated rendering sessions.
	Renderer interface {
		NewSession(ctx context.Context) (Session, error)
	}

	// Session turns markup into PDF bytes. It must be closed after use.
	Session interface {
		Render(ctx context.Context, html []byte) ([]byte, error)
		Close() error
	}

	// Cache keeps rendered PDFs by key. Misses are reported with ok=false.
	Cache interface {
		Get(ctx context.Context, key string) (val []byte, ok bool, err error)
		Set(ctx context.Context, key string, val []byte) error
	}

	File struct {
		Name    string
		Content []byte
	}

	ServiceDeps struct {
		Builder      *Builder
		StudentRepo  student.Repository
		GradeRepo    grade.Repository
		PaymentRepo  payment.Repository
		Renderer     Renderer
		Cache        Cache // optional
		EmailService core.EmailService
		Logger       core.Logger
	}

	Service struct {
		ServiceDeps
		school  core.SchoolConfig
		timeout time.Duration
	}
)

func NewService(conf *core.Config, deps ServiceDeps) *Service {
	timeout := conf.Renderer.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{ServiceDeps: deps, school: conf.School, timeout: timeout}
}

func (svc *Service) getStudent(ctx context.Context, id string) (*student.Student, error) {
	stu, err := svc.StudentRepo.GetStudent(ctx, id)
	if err != nil {
		if err == student.ErrNotFound {
			return nil, &MissingRecordError{Kind: "student", Key: id}
		}
		return nil, errors.Wrap(err, "getting student")
	}
	return &stu, nil
}

func (svc *Service) getPayment(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := svc.PaymentRepo.GetPayment(ctx, id)
	if err != nil {
		if err == payment.ErrNotFound {
			return nil, &MissingRecordError{Kind: "payment", Key: id}
		}
		return nil, errors.Wrap(err, "getting payment")
	}
	return &p, nil
}

// ReportCard renders the report card of a student for one term, or for the whole academic year when term is "".
func (svc *Service) ReportCard(ctx context.Context, studentID, academicYear, term string) (File, error) {
	stu, err := svc.getStudent(ctx, studentID)
	if err != nil {
		return File{}, err
	}
	recs, err := svc.GradeRepo.QueryRecords(ctx, grade.QueryFilter{StudentID: studentID, AcademicYear: academicYear, Term: term})
	if err != nil {
		return File{}, errors.Wrap(err, "querying grade records")
	}
	if len(recs) == 0 {
		key := studentID + " " + academicYear
		if term != "" {
			key += " term " + term
		}
		return File{}, &MissingRecordError{Kind: "grade record", Key: key}
	}

	kind := "ReportCard"
	if t1, t2 := termRecords(recs); t1 != nil && t2 != nil {
		kind = "YearlyReportCard"
	}
	pdf, err := svc.generate(ctx, func() ([]Document, error) {
		doc, err := svc.Builder.ReportCard(stu, recs)
		return []Document{doc}, err
	})
	if err != nil {
		return File{}, err
	}
	return File{Name: fileName(stu.FirstName, stu.LastName, kind), Content: pdf}, nil
}

func fileName(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), "_")
	}
	return strings.Join(parts, "_") + ".pdf"
}

func (svc *Service) receipt(ctx context.Context, paymentID string) (File, *payment.Payment, *student.Student, error) {
	p, err := svc.getPayment(ctx, paymentID)
	if err != nil {
		return File{}, nil, nil, err
	}
	stu, err := svc.getStudent(ctx, p.StudentID)
	if err != nil {
		return File{}, nil, nil, err
	}

	pdf, err := svc.generate(ctx, func() ([]Document, error) {
		doc, err := svc.Builder.Receipt(stu, p)
		return []Document{doc}, err
	})
	if err != nil {
		return File{}, nil, nil, err
	}
	return File{Name: "receipt-" + p.ReceiptNumber + ".pdf", Content: pdf}, p, stu, nil
}

// Receipt renders the receipt of one payment.
func (svc *Service) Receipt(ctx context.Context, paymentID string) (File, error) {
	file, _, _, err := svc.receipt(ctx, paymentID)
	return file, err
}

// Receipts renders many receipts into one PDF within a single session. A payment that cannot be assembled
// is skipped and logged; the call fails only when none could be.
func (svc *Service) Receipts(ctx context.Context, paymentIDs []string) (File, error) {
	pdf, err := svc.generate(ctx, func() ([]Document, error) {
		docs := make([]Document, 0, len(paymentIDs))
		for _, id := range paymentIDs {
			doc, err := svc.assembleReceipt(ctx, id)
			if err != nil {
				var mErr *MissingRecordError
				if !errors.As(err, &mErr) {
					return nil, err
				}
				svc.Logger.Warn(fmt.Sprintf("batch receipts: skipping payment %s: %v", id, err))
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			return nil, &MissingRecordError{Kind: "payment", Key: strings.Join(paymentIDs, ",")}
		}
		return docs, nil
	})
	if err != nil {
		return File{}, err
	}
	return File{Name: "receipts-" + core.NowFunc().Format("20060102") + ".pdf", Content: pdf}, nil
}

func (svc *Service) assembleReceipt(ctx context.Context, paymentID string) (Document, error) {
	p, err := svc.getPayment(ctx, paymentID)
	if err != nil {
		return Document{}, err
	}
	stu, err := svc.getStudent(ctx, p.StudentID)
	if err != nil {
		return Document{}, err
	}
	return svc.Builder.Receipt(stu, p)
}

type receiptEmailData struct {
	Name          string
	ReceiptNumber string
	StudentName   string
	AcademicYear  string
	TotalPaid     string
	Balance       string
	Status        string
}

// EmailRequest names the recipient of an e-mailed receipt.
type EmailRequest struct {
	Name  string `json:"name" validate:"max=256"`
	Email string `json:"email" validate:"required,email"`
}

// EmailReceipt renders the receipt of a payment and mails it as an attachment.
func (svc *Service) EmailReceipt(ctx context.Context, paymentID string, to mail.Address) error {
	file, p, stu, err := svc.receipt(ctx, paymentID)
	if err != nil {
		return err
	}

	status, balance := svc.Builder.balance(p)
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Payment receipt " + p.ReceiptNumber,
		TemplateName: "receipt",
		TemplateData: receiptEmailData{
			Name:          to.Name,
			ReceiptNumber: p.ReceiptNumber,
			StudentName:   stu.FullName(),
			AcademicYear:  p.AcademicYear,
			TotalPaid:     svc.Builder.money.format(p.TotalPaid()),
			Balance:       balance,
			Status:        status,
		},
	}
	if err = msg.Attach(bytes.NewReader(file.Content), file.Name, "application/pdf"); err != nil {
		return errors.Wrap(err, "attaching receipt")
	}
	svc.EmailService.SendMessages(msg)
	return nil
}

// generate assembles documents and renders them within one renderer session bounded by the configured timeout.
// No session is opened on a cache hit; an opened session is released on every path.
func (svc *Service) generate(ctx context.Context, assemble func() ([]Document, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	docs, err := assemble()
	if err != nil {
		return nil, err
	}
	html, err := RenderHTML(docs...)
	if err != nil {
		return nil, err
	}

	key := cacheKey(html)
	if pdf, ok := svc.cached(ctx, key); ok {
		return pdf, nil
	}

	sess, err := svc.Renderer.NewSession(ctx)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			svc.Logger.Warn("closing renderer session", err)
		}
	}()

	pdf, err := sess.Render(ctx, html)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	if svc.Cache != nil {
		if err := svc.Cache.Set(ctx, key, pdf); err != nil {
			svc.Logger.Warn("caching pdf", err)
		}
	}
	return pdf, nil
}

func (svc *Service) cached(ctx context.Context, key string) ([]byte, bool) {
	if svc.Cache == nil {
		return nil, false
	}
	pdf, ok, err := svc.Cache.Get(ctx, key)
	if err != nil {
		svc.Logger.Warn("reading pdf cache", err)
		return nil, false
	}
	return pdf, ok
}

func cacheKey(html []byte) string {
	sum := sha256.Sum256(html)
	return "pdf:" + hex.EncodeToString(sum[:])
}
