package inmemdb

import (
	"sync"

	"github.com/trezcool/imani/core/devotional"
	"github.com/trezcool/imani/core/program"
	"github.com/trezcool/imani/core/reflection"
	"github.com/trezcool/imani/core/user"
)

// DB is an in-memory database; used by tests and local development.
type DB struct {
	users       *userTable
	devotionals *devotionalTable
	progress    *progressTable
	reflections *reflectionTable
}

func Open() *DB {
	return &DB{
		users:       &userTable{table: make(map[string]*user.User)},
		devotionals: &devotionalTable{table: make(map[int]*devotional.Devotional)},
		progress:    &progressTable{table: make(map[string]*program.Progress)},
		reflections: &reflectionTable{table: make(map[string]*reflection.Reflection)},
	}
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type devotionalTable struct {
	mutex sync.RWMutex
	table map[int]*devotional.Devotional // keyed by devotional id
}

type progressTable struct {
	mutex sync.RWMutex
	table map[string]*program.Progress // keyed by user id
}

type reflectionTable struct {
	mutex sync.RWMutex
	table map[string]*reflection.Reflection
}
