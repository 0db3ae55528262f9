package config

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// MergeConfig 将 src 中的非零值覆盖到 dst 上并返回 dst
//   - dst、src 均为 nil 返回 ErrNilConfig
//   - 仅一方为 nil 时返回另一方
//
// 零值（false、0、""、空切片）视为"未设置"，因此无法用 src 把字段改回零值
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, errors.Wrap(ErrNilConfig, "both dst and src are nil")
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := mergeValue(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, errors.Mark(err, ErrMergeFailed)
	}
	return dst, nil
}

func mergeValue(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() || isEmptyContainer(src) {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		t := src.Type()
		for i := 0; i < src.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			f := dst.Field(i)
			if !f.CanSet() {
				continue
			}
			if err := mergeValue(f, src.Field(i)); err != nil {
				return errors.Wrapf(err, "merge field %s", t.Field(i).Name)
			}
		}
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		iter := src.MapRange()
		for iter.Next() {
			cur := dst.MapIndex(iter.Key())
			if !cur.IsValid() {
				dst.SetMapIndex(iter.Key(), iter.Value())
				continue
			}
			merged := reflect.New(dst.Type().Elem()).Elem()
			merged.Set(cur)
			if err := mergeValue(merged, iter.Value()); err != nil {
				return err
			}
			dst.SetMapIndex(iter.Key(), merged)
		}
	case reflect.Ptr:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return mergeValue(dst.Elem(), src.Elem())
	default:
		// 基本类型与切片整体覆盖
		if !dst.CanSet() {
			return errors.Newf("cannot set %s", dst.Type())
		}
		dst.Set(src)
	}
	return nil
}

func isEmptyContainer(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return false
}
