package utils

import (
	"encoding/csv"
	"io"
	"strings"

	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
)

// Column order used by both import and export.
var csvHeader = []string{
	"full_name", "email", "phone", "gender",
	"age_group", "state", "organization", "referral_source",
}

// ParseParticipantsCSV reads roster rows in csvHeader order. Rows with
// both email and phone empty are silently dropped; short rows are
// padded with empty strings. Returns the parsed participants and the
// number of dropped rows.
func ParseParticipantsCSV(r io.Reader) ([]models.Participant, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate partial column sets
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, err
	}

	var participants []models.Participant
	dropped := 0
	for i, row := range records {
		if i == 0 && isHeaderRow(row) {
			continue
		}

		// pad missing trailing columns
		for len(row) < len(csvHeader) {
			row = append(row, "")
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}

		if row[1] == "" && row[2] == "" {
			dropped++
			continue
		}

		participants = append(participants, models.Participant{
			FullName:       row[0],
			Email:          row[1],
			Phone:          row[2],
			Gender:         row[3],
			AgeGroup:       row[4],
			State:          row[5],
			Organization:   row[6],
			ReferralSource: row[7],
		})
	}

	return participants, dropped, nil
}

// WriteParticipantsCSV exports a roster. Legacy string entries become
// email-only rows; missing entries are skipped.
func WriteParticipantsCSV(w io.Writer, entries []models.ParticipantEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		switch e.Kind {
		case models.ParticipantStructured:
			p := e.Participant
			row := []string{
				p.FullName, p.Email, p.Phone, p.Gender,
				p.AgeGroup, p.State, p.Organization, p.ReferralSource,
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		case models.ParticipantLegacy:
			row := []string{"", e.LegacyEmail, "", "", "", "", "", ""}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "full_name" || first == "fullname" || first == "full name" || first == "name"
}
