// Package testutil builds fixtures for tests: an in-memory store and records created through the repositories.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/core/user"
	memkv "github.com/abdel28fr/ecole-pwa/storage/kv/memory"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
)

// NewDB returns a DB over a fresh in-memory store, seeded with the default data.
func NewDB(t *testing.T) *kvrepos.DB {
	db := kvrepos.NewDB(memkv.New())
	if _, err := kvrepos.Seed(context.Background(), db); err != nil {
		t.Fatalf("NewDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator and translator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	grade.InitValidators(validate, translator)
	finance.InitValidators(validate, translator)
	settings.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name, level string, capacity int) class.Class {
	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), class.Class{
		Name:      name,
		Level:     level,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name string,
	age int,
	gender string,
	classID int,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	students, err := repo.CreateStudents(context.Background(), student.Student{
		FullName:  name,
		Age:       age,
		Gender:    gender,
		ClassID:   classID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return students[0]
}

func CreateSubject(t *testing.T, repo subject.Repository, name, code string, coefficient int) subject.Subject {
	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:        name,
		Code:        code,
		Coefficient: coefficient,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	studentID, subjectID int,
	score float64,
	examType, examDate string,
) grade.Grade {
	now := time.Now().UTC()
	grades, err := repo.CreateGrades(context.Background(), grade.Grade{
		StudentID: studentID,
		SubjectID: subjectID,
		Score:     score,
		ExamType:  examType,
		ExamDate:  examDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grades[0]
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	studentID, month, year int,
	amount string,
	paidDate string, // empty if unpaid
) payment.Payment {
	now := time.Now().UTC()
	p, err := repo.CreatePayment(context.Background(), payment.Payment{
		StudentID: studentID,
		Month:     month,
		Year:      year,
		Amount:    decimal.RequireFromString(amount),
		IsPaid:    paidDate != "",
		PaidDate:  paidDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func CreateTransaction(
	t *testing.T,
	repo finance.Repository,
	typ string,
	categoryID int,
	amount, description, date string,
) finance.Transaction {
	now := time.Now().UTC()
	tx, err := repo.CreateTransaction(context.Background(), finance.Transaction{
		Type:        typ,
		CategoryID:  categoryID,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	return tx
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
