package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "string with spaces",
			str:       "  test  ",
			paramName: "param",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		start   time.Time
		end     time.Time
		name    string
		wantErr bool
	}{
		{name: "ordered", start: jan1, end: jan1.AddDate(0, 0, 30)},
		{name: "single day", start: jan1, end: jan1},
		{name: "same day different hours", start: jan1.Add(20 * time.Hour), end: jan1.Add(time.Hour)},
		{name: "inverted", start: jan1.AddDate(0, 0, 1), end: jan1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDateRange(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDateRange) {
				t.Errorf("validateDateRange() error should wrap ErrInvalidDateRange, got %v", err)
			}
		})
	}
}

func TestValidateExpense(t *testing.T) {
	valid := func() *model.Expense {
		return &model.Expense{
			Date:       time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			Amount:     decimal.RequireFromString("12.50"),
			CategoryID: 1,
		}
	}

	tests := []struct {
		expense *model.Expense
		wantErr error
		name    string
	}{
		{name: "valid", expense: valid()},
		{name: "nil", expense: nil, wantErr: ErrNilParameter},
		{
			name: "missing date",
			expense: func() *model.Expense {
				e := valid()
				e.Date = time.Time{}
				return e
			}(),
			wantErr: ErrInvalidExpense,
		},
		{
			name: "zero amount",
			expense: func() *model.Expense {
				e := valid()
				e.Amount = decimal.Zero
				return e
			}(),
			wantErr: ErrInvalidExpense,
		},
		{
			name: "negative amount",
			expense: func() *model.Expense {
				e := valid()
				e.Amount = decimal.RequireFromString("-3")
				return e
			}(),
			wantErr: ErrInvalidExpense,
		},
		{
			name: "missing category",
			expense: func() *model.Expense {
				e := valid()
				e.CategoryID = 0
				return e
			}(),
			wantErr: ErrInvalidExpense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateExpense(tt.expense)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateExpense() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
