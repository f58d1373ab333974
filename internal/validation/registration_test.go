package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("NewValidator panicked: %v", r)
		}
	}()
	v := NewValidator()

	type sample struct {
		Reason string `validate:"flag_reason"`
		Path   string `validate:"image_ext"`
	}
	if err := v.validate.Struct(sample{Reason: "other", Path: "a.png"}); err != nil {
		t.Errorf("Expected valid struct, got %v", err)
	}
	if err := v.validate.Struct(sample{Reason: "spam", Path: "a.exe"}); err == nil {
		t.Error("Expected custom rules to reject bad values")
	}
}

func TestMustRegisterPanicsWhenRuleIsRejected(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an empty tag name")
		}
	}()
	mustRegister(validator.New(), "", func(validator.FieldLevel) bool { return true })
}
