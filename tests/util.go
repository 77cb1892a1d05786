package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/imani/core/devotional"
	"github.com/trezcool/imani/core/program"
	"github.com/trezcool/imani/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
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

// SeedDevotionals fills the catalog for every position for which keep returns
// true; a nil keep seeds the full 35.
func SeedDevotionals(t *testing.T, svc *devotional.Service, keep func(week, day int) bool) {
	t.Helper()

	for week := 1; week <= program.Weeks; week++ {
		for day := 1; day <= program.DaysPerWeek; day++ {
			if keep != nil && !keep(week, day) {
				continue
			}
			nd := devotional.NewDevotional{
				Week:  week,
				Day:   day,
				Title: "Abiding Daily",
				Body:  "Remain in me, as I also remain in you.",
			}
			if _, err := svc.Create(context.Background(), nd); err != nil {
				t.Fatalf("SeedDevotionals() failed at (%d,%d): %v", week, day, err)
			}
		}
	}
}
