package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.SettingRepository = (*SettingRepo)(nil)

// SettingRepo implementación en memoria de SettingRepository.
type SettingRepo struct {
	s  *Store
	tx *state
}

func (r *SettingRepo) Get(_ context.Context, key string) (*entity.Setting, error) {
	var out *entity.Setting
	err := r.s.with(r.tx, func(st *state) error {
		if v, ok := st.settings[key]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *SettingRepo) List(_ context.Context) ([]*entity.Setting, error) {
	var out []*entity.Setting
	err := r.s.with(r.tx, func(st *state) error {
		for _, v := range st.settings {
			vv := v
			out = append(out, &vv)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return nil
	})
	return out, err
}

func (r *SettingRepo) Insert(_ context.Context, s *entity.Setting) error {
	return r.s.with(r.tx, func(st *state) error {
		if _, ok := st.settings[s.Key]; ok {
			return domain.Duplicate("setting", "key", s.Key)
		}
		now := time.Now()
		v := *s
		v.UpdatedAt = &now
		st.settings[s.Key] = v
		return nil
	})
}

func (r *SettingRepo) Upsert(_ context.Context, s *entity.Setting) error {
	return r.s.with(r.tx, func(st *state) error {
		now := time.Now()
		v := *s
		if cur, ok := st.settings[s.Key]; ok && v.Description == "" {
			v.Description = cur.Description
		}
		v.UpdatedAt = &now
		st.settings[s.Key] = v
		return nil
	})
}

func (r *SettingRepo) Delete(_ context.Context, key string) error {
	return r.s.with(r.tx, func(st *state) error {
		delete(st.settings, key)
		return nil
	})
}

func (r *SettingRepo) DeleteAll(_ context.Context) error {
	return r.s.with(r.tx, func(st *state) error {
		st.settings = map[string]entity.Setting{}
		return nil
	})
}
