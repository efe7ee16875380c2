package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parámetros comunes a todos los listados.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// Limits de paginación. page y pageSize siempre se escriben; si faltan al
// decodificar se usan los defaults.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

var DefaultLimits = Limits{DefaultPageSize: 20, MaxPageSize: 100}

type AnimalQuery struct {
	Filters  AnimalFilters
	Search   string
	Page     int
	PageSize int
}

type GroupQuery struct {
	Filters  GroupFilters
	Search   string
	Page     int
	PageSize int
}

type NeededQuery struct {
	Filters  FostersNeededFilters
	Search   string
	Page     int
	PageSize int
}

func (q AnimalQuery) Encode() url.Values {
	v := url.Values{}
	encodeFields(animalFields, q.Filters, v)
	encodeCommon(v, q.Filters.Sort, q.Search, q.Page, q.PageSize)
	return v
}

func DecodeAnimalQuery(v url.Values, lim Limits) (AnimalQuery, error) {
	var q AnimalQuery
	if err := decodeFields(animalFields, v, &q.Filters); err != nil {
		return AnimalQuery{}, err
	}
	var err error
	q.Filters.Sort, q.Search, q.Page, q.PageSize, err = decodeCommon(v, lim)
	if err != nil {
		return AnimalQuery{}, err
	}
	return q, nil
}

func (q GroupQuery) Encode() url.Values {
	v := url.Values{}
	encodeFields(groupFields, q.Filters, v)
	encodeCommon(v, q.Filters.Sort, q.Search, q.Page, q.PageSize)
	return v
}

func DecodeGroupQuery(v url.Values, lim Limits) (GroupQuery, error) {
	var q GroupQuery
	if err := decodeFields(groupFields, v, &q.Filters); err != nil {
		return GroupQuery{}, err
	}
	var err error
	q.Filters.Sort, q.Search, q.Page, q.PageSize, err = decodeCommon(v, lim)
	if err != nil {
		return GroupQuery{}, err
	}
	return q, nil
}

func (q NeededQuery) Encode() url.Values {
	v := url.Values{}
	encodeFields(neededFields, q.Filters, v)
	encodeCommon(v, q.Filters.Sort, q.Search, q.Page, q.PageSize)
	return v
}

func DecodeNeededQuery(v url.Values, lim Limits) (NeededQuery, error) {
	var q NeededQuery
	if err := decodeFields(neededFields, v, &q.Filters); err != nil {
		return NeededQuery{}, err
	}
	var err error
	q.Filters.Sort, q.Search, q.Page, q.PageSize, err = decodeCommon(v, lim)
	if err != nil {
		return NeededQuery{}, err
	}
	return q, nil
}

func encodeFields[F any](fields []field[F], f F, v url.Values) {
	for _, fd := range fields {
		if s, ok := fd.encode(f); ok {
			v.Set(fd.param, s)
		}
	}
}

// decodeFields: clave ausente o vacía = sin setear.
func decodeFields[F any](fields []field[F], v url.Values, f *F) error {
	for _, fd := range fields {
		raw := trimParam(v.Get(fd.param))
		if raw == "" {
			continue
		}
		if err := fd.decode(f, raw); err != nil {
			return err
		}
	}
	return nil
}

func encodeCommon(v url.Values, sort SortOrder, search string, page, pageSize int) {
	if sort != "" {
		v.Set(ParamSort, string(sort))
	}
	if strings.TrimSpace(search) != "" {
		v.Set(ParamSearch, search)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultLimits.DefaultPageSize
	}
	v.Set(ParamPage, strconv.Itoa(page))
	v.Set(ParamPageSize, strconv.Itoa(pageSize))
}

func decodeCommon(v url.Values, lim Limits) (SortOrder, string, int, int, error) {
	if lim.DefaultPageSize <= 0 {
		lim.DefaultPageSize = DefaultLimits.DefaultPageSize
	}
	if lim.MaxPageSize <= 0 {
		lim.MaxPageSize = DefaultLimits.MaxPageSize
	}

	var sort SortOrder
	if raw := trimParam(v.Get(ParamSort)); raw != "" {
		sort = SortOrder(raw)
		if !sort.Valid() {
			return "", "", 0, 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, ParamSort, raw)
		}
	}

	search := v.Get(ParamSearch)
	if strings.TrimSpace(search) == "" {
		search = ""
	}

	page := 1
	if n, err := strconv.Atoi(trimParam(v.Get(ParamPage))); err == nil && n > 0 {
		page = n
	}

	// pageSize fuera de 1..MaxPageSize es ErrInvalidParam; no se recorta.
	size := lim.DefaultPageSize
	if raw := trimParam(v.Get(ParamPageSize)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > lim.MaxPageSize {
			return "", "", 0, 0, fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidParam, ParamPageSize, lim.MaxPageSize)
		}
		size = n
	}

	return sort, search, page, size, nil
}
