package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"

	"gnoa_membership_go/models"
)

// membershipFormTemplate lays out the printed application form. The trailing
// Office Use Only block is filled in by hand after the committee meeting, so
// it renders as blanks.
const membershipFormTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: 'Times New Roman', Georgia, serif; font-size: 12px; color: #1a1a1a; }
  .header { text-align: center; border-bottom: 2px solid #1a1a1a; padding-bottom: 10px; margin-bottom: 16px; }
  .header h1 { font-size: 18px; margin: 0 0 4px 0; letter-spacing: 1px; }
  .header .subtitle { font-size: 12px; margin: 0; }
  .section { margin-bottom: 14px; }
  .section-title { font-size: 13px; font-weight: bold; border-bottom: 1px solid #888; padding-bottom: 2px; margin-bottom: 6px; text-transform: uppercase; }
  table.fields { width: 100%; border-collapse: collapse; }
  table.fields td { padding: 3px 4px; vertical-align: top; }
  td.label { width: 38%; font-weight: bold; }
  td.value { border-bottom: 1px dotted #999; }
  .signature-block { margin-top: 20px; }
  .signature-img { max-height: 60px; max-width: 200px; }
  .signature-line { border-top: 1px solid #1a1a1a; width: 220px; padding-top: 2px; font-size: 11px; }
  .office-use { margin-top: 28px; border: 1.5px solid #1a1a1a; padding: 10px 12px; page-break-inside: avoid; }
  .office-use .title { font-weight: bold; text-align: center; text-transform: uppercase; margin-bottom: 10px; }
  .office-use .row { margin-bottom: 12px; }
  .office-use .blank { display: inline-block; border-bottom: 1px solid #1a1a1a; min-width: 180px; }
  .office-use .pair { display: flex; justify-content: space-between; margin-top: 26px; }
  .office-use .pair .signatory { width: 45%; border-top: 1px solid #1a1a1a; text-align: center; padding-top: 3px; font-size: 11px; }
</style>
</head>
<body>
  <div class="header">
    <h1>Government Nursing Officers' Association</h1>
    <p class="subtitle">Application for Membership</p>
  </div>

  <div class="section">
    <div class="section-title">Personal Information</div>
    <table class="fields">
      <tr><td class="label">Name in Full</td><td class="value">{{.App.NameInFull}}</td></tr>
      <tr><td class="label">NIC Number</td><td class="value">{{.App.NICNumber}}</td></tr>
      <tr><td class="label">Date of Birth</td><td class="value">{{.App.DOB}}</td></tr>
      <tr><td class="label">Gender</td><td class="value">{{.App.Gender}}</td></tr>
      <tr><td class="label">Marital Status</td><td class="value">{{.App.MaritalStatus}}</td></tr>
    </table>
  </div>

  <div class="section">
    <div class="section-title">Contact Details</div>
    <table class="fields">
      <tr><td class="label">Email</td><td class="value">{{.App.Email}}</td></tr>
      <tr><td class="label">Phone Number (Personal)</td><td class="value">{{.App.PhoneNumberPersonal}}</td></tr>
      <tr><td class="label">WhatsApp Number</td><td class="value">{{.App.WhatsappNumber}}</td></tr>
      <tr><td class="label">Official Address</td><td class="value">{{.App.OfficialAddress}}</td></tr>
      <tr><td class="label">Personal Address</td><td class="value">{{.App.PersonalAddress}}</td></tr>
    </table>
  </div>

  <div class="section">
    <div class="section-title">Work Place Details</div>
    <table class="fields">
      <tr><td class="label">Category</td><td class="value">{{.App.Category}}</td></tr>
      <tr><td class="label">Designation</td><td class="value">{{.App.Designation}}</td></tr>
      {{if .App.ProvinceWorkPlace}}<tr><td class="label">Province of Work Place</td><td class="value">{{.App.ProvinceWorkPlace}}</td></tr>{{end}}
      {{if .App.DistrictWorkPlace}}<tr><td class="label">District of Work Place</td><td class="value">{{.App.DistrictWorkPlace}}</td></tr>{{end}}
      {{if .App.RDHS}}<tr><td class="label">RDHS Division</td><td class="value">{{.App.RDHS}}</td></tr>{{end}}
      <tr><td class="label">Institution</td><td class="value">{{.App.Institution}}</td></tr>
    </table>
  </div>

  <div class="section">
    <div class="section-title">Employment &amp; Qualifications</div>
    <table class="fields">
      <tr><td class="label">Date of First Appointment</td><td class="value">{{.App.FirstAppointmentDate}}</td></tr>
      <tr><td class="label">Employment / Salary Number</td><td class="value">{{.App.EmploymentNumber}}</td></tr>
      <tr><td class="label">College of Nursing / University</td><td class="value">{{.App.CollegeOfNursing}}</td></tr>
      <tr><td class="label">Nursing Council Registration No.</td><td class="value">{{.App.NursingCouncilRegistration}}</td></tr>
      <tr><td class="label">Educational Qualifications</td><td class="value">{{.App.EducationalQualifications}}</td></tr>
      <tr><td class="label">Specialties / Special Trainings</td><td class="value">{{.App.Specialties}}</td></tr>
    </table>
  </div>

  <div class="section signature-block">
    <div class="section-title">Declaration</div>
    <p>I hereby apply for membership of the Government Nursing Officers' Association and certify
    that the particulars given above are true and accurate to the best of my knowledge.</p>
    {{if .SignatureSrc}}<img class="signature-img" src="{{.SignatureSrc}}" alt="Signature">{{end}}
    <div class="signature-line">Signature of Applicant</div>
    <p>Date: {{.SubmittedDate}}</p>
  </div>

  <div class="office-use">
    <div class="title">For Office Use Only</div>
    <div class="row">Membership Number: <span class="blank">&nbsp;</span></div>
    <div class="row">Date of Admission: <span class="blank">&nbsp;</span></div>
    <div class="row">Remarks: <span class="blank" style="min-width: 320px;">&nbsp;</span></div>
    <div class="pair">
      <div class="signatory">President</div>
      <div class="signatory">Secretary</div>
    </div>
  </div>
</body>
</html>`

var membershipTmpl = template.Must(template.New("membership_form").Parse(membershipFormTemplate))

type membershipFormData struct {
	App           *models.MemberApplication
	SignatureSrc  template.URL
	SubmittedDate string
}

// RenderMembershipFormHTML renders an application into the printable form.
// The stored signature image is inlined as a data URL so the page renders
// without network access inside headless Chrome.
func RenderMembershipFormHTML(ctx context.Context, application *models.MemberApplication) (string, error) {
	data := membershipFormData{
		App:           application,
		SubmittedDate: application.CreatedAt.Format("2006-01-02"),
		SignatureSrc:  signatureSrc(ctx, application.Signature),
	}

	var buf bytes.Buffer
	if err := membershipTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render membership form: %w", err)
	}
	return buf.String(), nil
}

// GenerateMembershipPDF renders an application form to PDF
func GenerateMembershipPDF(ctx context.Context, application *models.MemberApplication) ([]byte, error) {
	html, err := RenderMembershipFormHTML(ctx, application)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(html, DefaultPDFOptions())
}

// signatureSrc resolves the stored signature into an image source. Rows
// predating in-app storage hold a full external URL which is passed through
// as-is; storage keys are fetched and inlined.
func signatureSrc(ctx context.Context, signature string) template.URL {
	if signature == "" {
		return ""
	}
	if strings.HasPrefix(signature, "http://") || strings.HasPrefix(signature, "https://") {
		return template.URL(signature)
	}
	if Storage == nil {
		return ""
	}

	reader, contentType, err := Storage.Get(ctx, signature)
	if err != nil {
		log.Printf("[PDF] Failed to load signature %s: %v", signature, err)
		return ""
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, MaxSignatureBytes))
	if err != nil {
		log.Printf("[PDF] Failed to read signature %s: %v", signature, err)
		return ""
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return template.URL(fmt.Sprintf("data:%s;base64,%s", contentType, encoded))
}
