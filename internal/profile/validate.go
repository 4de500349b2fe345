package profile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var profileIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// scheduleParser matches the scheduler's cron.WithSeconds() format
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(p *Profile) error {
	// === Meta ===
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}
	if !profileIDPattern.MatchString(p.Meta.ProfileID) {
		return ValidationError{"meta.profile_id", "must be lowercase letters, digits, '_' or '-'"}
	}
	if p.Meta.Version < 1 {
		return ValidationError{"meta.version", "must be >= 1"}
	}
	if p.Meta.Schedule != "" {
		if _, err := scheduleParser.Parse(p.Meta.Schedule); err != nil {
			return ValidationError{"meta.schedule", err.Error()}
		}
	}

	if strings.TrimSpace(p.UserID) == "" {
		return ValidationError{"user_id", "required"}
	}

	// === Parameters ===
	if err := validateList("parameters.sectors", p.Parameters.Sectors); err != nil {
		return err
	}
	if err := validateList("parameters.geography", p.Parameters.Geography); err != nil {
		return err
	}
	if err := validateList("parameters.excluded_investments", p.Parameters.ExcludedInvestments); err != nil {
		return err
	}

	if err := validateList("parameters.asset_classes", p.Parameters.AssetClasses); err != nil {
		return err
	}

	params := p.GenerationParameters()
	if err := params.Validate(); err != nil {
		return ValidationError{"parameters", err.Error()}
	}

	// === Context ===
	if p.Context != nil {
		if err := validateList("context.jurisdictions", p.Context.Jurisdictions); err != nil {
			return err
		}
	}

	return nil
}

func validateList(field string, values []string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), "blank entry"}
		}
	}
	return nil
}
