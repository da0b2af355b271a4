package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// Multiplier returns the TDEE factor, defaulting to sedentary.
func (a ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[ActivityLevel(strings.ToLower(string(a)))]; ok {
		return m
	}
	return activityMultipliers[Sedentary]
}

// Profile is a calorie tracker user with derived energy figures.
type Profile struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName      string        `gorm:"size:255" json:"full_name"`
	Age           int           `gorm:"not null" json:"age"`
	Sex           string        `gorm:"size:1;not null" json:"sex"`
	HeightCM      float64       `gorm:"column:height_cm;not null" json:"height_cm"`
	WeightKG      float64       `gorm:"column:weight_kg;not null" json:"weight_kg"`
	ActivityLevel ActivityLevel `gorm:"size:20;not null;default:sedentary" json:"activity_level"`
	BMR           float64       `gorm:"column:bmr" json:"bmr"`
	TDEE          float64       `gorm:"column:tdee" json:"tdee"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

var ErrInvalidProfile = errors.New("invalid profile")

// Validate checks the inputs to the BMR formula.
func (p *Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidProfile)
	case p.Age <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	case p.HeightCM <= 0 || p.WeightKG <= 0:
		return fmt.Errorf("%w: height and weight must be positive", ErrInvalidProfile)
	}
	sex := strings.ToUpper(strings.TrimSpace(p.Sex))
	if sex != "M" && sex != "F" {
		return fmt.Errorf("%w: sex must be M or F", ErrInvalidProfile)
	}
	p.Sex = sex
	if p.ActivityLevel == "" {
		p.ActivityLevel = Sedentary
	}
	p.ActivityLevel = ActivityLevel(strings.ToLower(string(p.ActivityLevel)))
	if _, ok := activityMultipliers[p.ActivityLevel]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.ActivityLevel)
	}
	return nil
}

// CalculateBMR applies the Mifflin-St Jeor equation.
func (p *Profile) CalculateBMR() float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if strings.EqualFold(p.Sex, "M") {
		bmr += 5
	} else {
		bmr -= 161
	}
	return round2(bmr)
}

func (p *Profile) CalculateTDEE() float64 {
	return round2(p.CalculateBMR() * p.ActivityLevel.Multiplier())
}

// UpdateCalculations refreshes BMR and TDEE from the current metrics.
func (p *Profile) UpdateCalculations() {
	p.BMR = p.CalculateBMR()
	p.TDEE = p.CalculateTDEE()
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Profile) BeforeSave(tx *gorm.DB) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdateCalculations()
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
