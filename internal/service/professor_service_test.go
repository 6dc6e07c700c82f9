package service

import (
	"context"
	"testing"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestProfessorUpdateRequiresAdminOrSelf(t *testing.T) {
	db := newMemDB()
	svc := NewProfessorService(&fakeTx{}, fakeUsers{db}, zerolog.Nop())
	ctx := context.Background()
	benali, p := db.addProfessor("Prof. Benali")
	other, _ := db.addProfessor("Prof. Haddad")

	got, err := svc.Update(ctx, benali, p.ID, &model.UpdateProfessorRequest{
		Bio: ptr("Conversation classes"), Languages: []string{"French", "Arabic"},
	})
	if err != nil || got.Bio != "Conversation classes" || len(got.Languages) != 2 {
		t.Fatalf("self update: %+v %v", got, err)
	}

	if _, err := svc.Update(ctx, other, p.ID, &model.UpdateProfessorRequest{Bio: ptr("x")}); !isKind(err, ErrUnauthorized) {
		t.Fatalf("foreign update: got %v", err)
	}
	if db.professors[p.ID].Bio != "Conversation classes" {
		t.Fatal("bio must be unchanged after a rejected update")
	}

	got, err = svc.Update(ctx, db.addAdmin("Root"), p.ID, &model.UpdateProfessorRequest{
		Name: ptr("Dr. Benali"), Specialization: ptr("Phonetics"),
	})
	if err != nil || got.Name != "Dr. Benali" || got.Specialization != "Phonetics" || len(got.Languages) != 2 {
		t.Fatalf("admin update: %+v %v", got, err)
	}
	if db.users[benali.UserID].Name != "Dr. Benali" {
		t.Fatal("account name not updated")
	}
}

func TestProfessorListCreatedBy(t *testing.T) {
	db := newMemDB()
	svc := NewProfessorService(&fakeTx{}, fakeUsers{db}, zerolog.Nop())
	ctx := context.Background()
	admin := db.addAdmin("Root")

	mine, p := db.addProfessor("Prof. Benali")
	u := db.users[mine.UserID]
	u.CreatedBy = &admin.UserID
	db.users[mine.UserID] = u
	db.addProfessor("Prof. Haddad")

	all, total, err := svc.List(ctx, model.ProfileFilter{Page: 1, PerPage: 20})
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("list: %v total=%d err=%v", all, total, err)
	}
	created, total, err := svc.List(ctx, model.ProfileFilter{CreatedBy: &admin.UserID, Page: 1, PerPage: 20})
	if err != nil || total != 1 || created[0].ID != p.ID {
		t.Fatalf("created by: %v total=%d err=%v", created, total, err)
	}
	stranger := uuid.New()
	if _, total, _ := svc.List(ctx, model.ProfileFilter{CreatedBy: &stranger}); total != 0 {
		t.Fatalf("unknown admin should match nothing, got %d", total)
	}
}

func TestProfessorDeleteAndMe(t *testing.T) {
	db := newMemDB()
	svc := NewProfessorService(&fakeTx{}, fakeUsers{db}, zerolog.Nop())
	ctx := context.Background()
	benali, p := db.addProfessor("Prof. Benali")

	if me, err := svc.Me(ctx, benali); err != nil || me.ID != p.ID {
		t.Fatalf("me: %+v %v", me, err)
	}
	if _, err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Me(ctx, benali); !isKind(err, ErrNotFound) {
		t.Fatalf("me after delete: got %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !isKind(err, ErrNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
}
