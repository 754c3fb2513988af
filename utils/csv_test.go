package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
)

func TestParseParticipantsCSV(t *testing.T) {
	t.Run("phone-only row accepted, empty row dropped", func(t *testing.T) {
		csv := "Jane Doe,,08011112222\n,,\n"
		participants, dropped, err := ParseParticipantsCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Equal(t, 1, dropped)
		require.Len(t, participants, 1)
		require.Equal(t, "Jane Doe", participants[0].FullName)
		require.Equal(t, "", participants[0].Email)
		require.Equal(t, "08011112222", participants[0].Phone)
	})

	t.Run("short rows padded with empty strings", func(t *testing.T) {
		csv := "John Smith,john@x.com\n"
		participants, dropped, err := ParseParticipantsCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Zero(t, dropped)
		require.Len(t, participants, 1)
		require.Equal(t, "john@x.com", participants[0].Email)
		require.Equal(t, "", participants[0].Phone)
		require.Equal(t, "", participants[0].ReferralSource)
	})

	t.Run("header row skipped", func(t *testing.T) {
		csv := "full_name,email,phone\nAda,a@x.com,070\n"
		participants, _, err := ParseParticipantsCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, participants, 1)
		require.Equal(t, "Ada", participants[0].FullName)
	})

	t.Run("full column set", func(t *testing.T) {
		csv := "Ada,a@x.com,070,Female,18-25,Lagos,Acme,Friend\n"
		participants, _, err := ParseParticipantsCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, participants, 1)
		p := participants[0]
		require.Equal(t, "Female", p.Gender)
		require.Equal(t, "18-25", p.AgeGroup)
		require.Equal(t, "Lagos", p.State)
		require.Equal(t, "Acme", p.Organization)
		require.Equal(t, "Friend", p.ReferralSource)
	})

	t.Run("all rows empty yields nothing", func(t *testing.T) {
		participants, dropped, err := ParseParticipantsCSV(strings.NewReader(",,\n,,\n"))
		require.NoError(t, err)
		require.Equal(t, 2, dropped)
		require.Empty(t, participants)
	})
}

func TestWriteParticipantsCSV(t *testing.T) {
	entries := []models.ParticipantEntry{
		{Kind: models.ParticipantMissing},
		models.StructuredEntry(models.Participant{
			ID:       primitive.NewObjectID(),
			FullName: "Ada",
			Email:    "a@x.com",
			Phone:    "070",
		}),
		{Kind: models.ParticipantLegacy, LegacyEmail: "legacy@x.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteParticipantsCSV(&buf, entries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// header + structured + legacy; missing entries are skipped
	require.Len(t, lines, 3)
	require.Equal(t, "full_name,email,phone,gender,age_group,state,organization,referral_source", lines[0])
	require.Equal(t, "Ada,a@x.com,070,,,,,", lines[1])
	require.Equal(t, ",legacy@x.com,,,,,,", lines[2])
}

func TestCSVImportExportRoundTrip(t *testing.T) {
	csv := "Ada,a@x.com,070,Female,18-25,Lagos,Acme,Friend\nJane Doe,,08011112222\n"
	participants, dropped, err := ParseParticipantsCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Zero(t, dropped)

	entries := make([]models.ParticipantEntry, 0, len(participants))
	for _, p := range participants {
		entries = append(entries, models.StructuredEntry(p))
	}

	var buf bytes.Buffer
	require.NoError(t, WriteParticipantsCSV(&buf, entries))

	again, dropped, err := ParseParticipantsCSV(&buf)
	require.NoError(t, err)
	require.Zero(t, dropped)
	require.Equal(t, participants, again)
}
