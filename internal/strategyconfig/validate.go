package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 에러 필드명을 YAML 키로 표시
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ValidationError{
				Field:   yamlPath(fe.Namespace()),
				Message: describeTag(fe),
			}
		}
		return err
	}

	// === Fundamental ===
	if err := validateWeightsSum(cfg.Fundamental.Weights.Sum(), 1.0, 1e-6); err != nil {
		return ValidationError{"fundamental.weights", err.Error()}
	}

	rs := cfg.Fundamental.RelStrength
	if len(rs.WindowsDays) != len(rs.WindowPoints) {
		return ValidationError{"fundamental.relative_strength", "windows_days length must match window_points length"}
	}
	if err := validateWeightsSum(rs.MomentumBlend+rs.LineBlend, 1.0, 1e-6); err != nil {
		return ValidationError{"fundamental.relative_strength.blend", err.Error()}
	}

	// === EntryExit ===
	if err := validateWeightsSum(cfg.EntryExit.ExitWeightSum(), 1.0, 1e-6); err != nil {
		return ValidationError{"entry_exit.target_weights", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.EntryExit.MinRiskReward < 2 {
		warnings = append(warnings, Warning{
			Code:    "LOW_RISK_REWARD",
			Message: "min_risk_reward < 2: 손익비 기준이 느슨함",
		})
	}

	if cfg.EntryExit.MaxLossPct > 0.10 {
		warnings = append(warnings, Warning{
			Code:    "WIDE_STOP",
			Message: "max_loss_pct > 10%: 손절 폭이 넓음",
		})
	}

	if cfg.Pattern.VolumeContractionRatio > 0.9 {
		warnings = append(warnings, Warning{
			Code:    "WEAK_VOLUME_FILTER",
			Message: "volume_contraction_ratio > 0.9: 거래량 수축 확인이 거의 없음",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateWeightsSum(sum float64, target float64, epsilon float64) error {
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

// yamlPath drops the root type name: "Config.pattern.pivot_width" -> "pattern.pivot_width"
func yamlPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "max", "lte":
		return "must be <= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lt":
		return "must be < " + fe.Param()
	case "gtfield", "gtefield":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
