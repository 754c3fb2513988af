package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStatusTransitions_ForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusOngoing, false},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusOngoing, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		// terminal statuses allow nothing
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusOngoing, false},
		{StatusCancelled, StatusApproved, false},
		// ongoing has no outgoing edges either
		{StatusOngoing, StatusCompleted, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		require.Equalf(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestClassify_PureAndTotal(t *testing.T) {
	parentID := primitive.NewObjectID()

	cases := []struct {
		name      string
		structure Structure
		parent    *primitive.ObjectID
		want      SeriesKind
	}{
		{"recurring without parent is master", StructureRecurring, nil, SeriesMaster},
		{"numerical without parent is master", StructureNumerical, nil, SeriesMaster},
		{"one-time without parent is standard", StructureOneTime, nil, SeriesStandard},
		{"recurring with parent is version", StructureRecurring, &parentID, SeriesVersion},
		{"one-time with parent is version", StructureOneTime, &parentID, SeriesVersion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Program{Structure: tc.structure, ParentProgram: tc.parent}
			require.Equal(t, tc.want, p.Classify())
			// pure: same input, same answer
			require.Equal(t, tc.want, p.Classify())
		})
	}
}

func TestDisplayName_VersionSuffix(t *testing.T) {
	parentID := primitive.NewObjectID()
	master := &Program{ID: parentID, Name: "Leadership Bootcamp", Structure: StructureNumerical}

	version := &Program{
		ParentProgram: &parentID,
		CustomSuffix:  "Batch 5",
	}
	require.Equal(t, "Leadership Bootcamp - Batch 5", version.DisplayName(master))

	date := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	dated := &Program{ParentProgram: &parentID, Date: &date}
	require.Equal(t, "Leadership Bootcamp - Mar 14, 2025", dated.DisplayName(master))

	// no suffix and no date falls back to the parent name
	bare := &Program{ParentProgram: &parentID}
	require.Equal(t, "Leadership Bootcamp", bare.DisplayName(master))

	// standard programs keep their own name
	standalone := &Program{Name: "Open Day", Structure: StructureOneTime}
	require.Equal(t, "Open Day", standalone.DisplayName(nil))
}

func TestRegistrationOpenAt(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("default open", func(t *testing.T) {
		p := &Program{Registration: Registration{IsOpen: true}}
		require.True(t, p.RegistrationOpenAt(now))
	})

	t.Run("explicit toggle closes", func(t *testing.T) {
		p := &Program{Registration: Registration{IsOpen: false}}
		require.False(t, p.RegistrationOpenAt(now))
	})

	t.Run("passed deadline closes even when toggled open", func(t *testing.T) {
		deadline := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
		p := &Program{Registration: Registration{IsOpen: true, Deadline: &deadline}}
		require.False(t, p.RegistrationOpenAt(now))
	})

	t.Run("future deadline stays open", func(t *testing.T) {
		deadline := now.Add(24 * time.Hour)
		p := &Program{Registration: Registration{IsOpen: true, Deadline: &deadline}}
		require.True(t, p.RegistrationOpenAt(now))
	})

	t.Run("anti-monotonic in time", func(t *testing.T) {
		deadline := now.Add(-time.Minute)
		p := &Program{Registration: Registration{IsOpen: true, Deadline: &deadline}}
		require.False(t, p.RegistrationOpenAt(now))
		// once closed by deadline, every later instant is closed too
		for _, later := range []time.Duration{time.Second, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
			require.False(t, p.RegistrationOpenAt(now.Add(later)))
		}
	})
}

func TestEffectiveSchema(t *testing.T) {
	own := []FieldDef{{Label: "t-shirt size", FieldType: "select", Options: []string{"S", "M", "L"}}}
	inherited := []FieldDef{{Label: "batch goal", FieldType: "textarea", Required: true}}
	parentID := primitive.NewObjectID()

	t.Run("own fields win", func(t *testing.T) {
		p := &Program{Registration: Registration{FormFields: own}}
		require.Equal(t, own, EffectiveSchema(p, nil))
	})

	t.Run("version inherits master fields", func(t *testing.T) {
		master := &Program{ID: parentID, Registration: Registration{FormFields: inherited}}
		version := &Program{ParentProgram: &parentID}
		require.Equal(t, inherited, EffectiveSchema(version, master))
	})

	t.Run("version with own fields ignores master", func(t *testing.T) {
		master := &Program{ID: parentID, Registration: Registration{FormFields: inherited}}
		version := &Program{ParentProgram: &parentID, Registration: Registration{FormFields: own}}
		require.Equal(t, own, EffectiveSchema(version, master))
	})

	t.Run("default schema fallback", func(t *testing.T) {
		p := &Program{}
		fields := EffectiveSchema(p, nil)
		require.Len(t, fields, 3)
		require.Equal(t, "gender", fields[0].Label)
		require.Equal(t, []string{"Male", "Female"}, fields[0].Options)
		require.Equal(t, "state", fields[1].Label)
		require.Equal(t, "organization", fields[2].Label)
	})
}

func TestValidateSubmission(t *testing.T) {
	fields := []FieldDef{
		{Label: "gender", FieldType: "select", Required: true, Options: []string{"Male", "Female"}},
		{Label: "organization", FieldType: "text"},
		{Label: "goals", FieldType: "textarea", Required: true},
	}

	t.Run("complete submission accepted", func(t *testing.T) {
		sub := Submission{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Answers:  map[string]string{"gender": "Female", "goals": "learn"},
		}
		require.Empty(t, ValidateSubmission(fields, sub))
	})

	t.Run("missing required field rejected", func(t *testing.T) {
		sub := Submission{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Answers:  map[string]string{"gender": "Female"},
		}
		problems := ValidateSubmission(fields, sub)
		require.Contains(t, problems, "goals")
	})

	t.Run("select answer must match an option", func(t *testing.T) {
		sub := Submission{
			FullName: "Jane Doe",
			Phone:    "08011112222",
			Answers:  map[string]string{"gender": "Other", "goals": "learn"},
		}
		problems := ValidateSubmission(fields, sub)
		require.Contains(t, problems, "gender")
	})

	t.Run("email or phone cross-field invariant", func(t *testing.T) {
		sub := Submission{
			FullName: "Jane Doe",
			Answers:  map[string]string{"gender": "Female", "goals": "learn"},
		}
		problems := ValidateSubmission(fields, sub)
		require.Contains(t, problems, "contact")

		sub.Phone = "08011112222"
		require.Empty(t, ValidateSubmission(fields, sub))
	})

	t.Run("full name always required", func(t *testing.T) {
		sub := Submission{
			Email:   "jane@example.com",
			Answers: map[string]string{"gender": "Female", "goals": "learn"},
		}
		problems := ValidateSubmission(fields, sub)
		require.Contains(t, problems, "full_name")
	})

	t.Run("optional select left empty is fine", func(t *testing.T) {
		optional := []FieldDef{{Label: "meal", FieldType: "select", Options: []string{"Veg", "Meat"}}}
		sub := Submission{FullName: "Jane Doe", Email: "jane@example.com"}
		require.Empty(t, ValidateSubmission(optional, sub))
	})
}

func TestCanModerate(t *testing.T) {
	dept := primitive.NewObjectID()
	other := primitive.NewObjectID()

	require.True(t, CanModerate(RoleSuperAdmin, nil, dept))
	require.True(t, CanModerate(RoleAdmin, []primitive.ObjectID{other, dept}, dept))
	require.False(t, CanModerate(RoleAdmin, []primitive.ObjectID{other}, dept))
	require.False(t, CanModerate(RoleStaff, []primitive.ObjectID{dept}, dept))
}
