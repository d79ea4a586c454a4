package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"boardview/internal/board"
	"boardview/internal/model"
	"boardview/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/starfederation/datastar-go/datastar"
)

const maxIntentBytes = 64 << 10

type homeData struct {
	Files []store.FileInfo
	Error string
}

type boardData struct {
	Session string
	File    string
	View    board.BoardView
}

type loadErrorData struct {
	File    string
	Message string
}

type checklistView struct {
	Name    string
	Done    int
	Total   int
	Percent int
	Items   []model.CheckItem
}

type cardDetailData struct {
	Session    string
	Card       model.Card
	ListName   string
	Archived   bool
	Labels     []board.LabelView
	Members    []board.MemberView
	Checklists []checklistView
	Badges     board.Badges
	Created    time.Time
}

type moveErrorResponse struct {
	Error string          `json:"error"`
	Board board.BoardView `json:"board"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	files, err := s.st().List(r.Context())
	data := homeData{Files: files}
	if err != nil {
		s.log.WithError(err).Error("list uploads")
		data.Error = "Unable to scan directory"
	}
	s.writeHTMLTemplate(w, http.StatusOK, "home.html", data)
}

func (s *Server) handleHomeEvents(w http.ResponseWriter, r *http.Request) {
	s.serveElementsStream(w, r, resourceKey{kind: "uploads"}, "#file-list", func() (string, error) {
		files, err := s.st().List(r.Context())
		if err != nil {
			return "", err
		}
		return s.renderTemplate("file_list", homeData{Files: files})
	}, nil)
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	info, err := s.saveUpload(w, r)
	if err != nil {
		status := http.StatusBadRequest
		msg := "No file uploaded."
		if !errors.Is(err, http.ErrMissingFile) {
			status, msg = uploadStatus(err), err.Error()
		}
		files, _ := s.st().List(r.Context())
		s.writeHTMLTemplate(w, status, "home.html", homeData{Files: files, Error: msg})
		return
	}
	http.Redirect(w, r, "/board/"+url.PathEscape(info.Name), http.StatusSeeOther)
}

// handleBoard opens a stored upload in a new session.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	st, err := s.loadState(r.Context(), name)
	if err != nil {
		status := statusFor(err)
		s.log.WithError(err).WithField("file", name).Warn("board load failed")
		msg := err.Error()
		if errors.Is(err, store.ErrNotFound) {
			msg = "File not found"
		}
		s.writeHTMLTemplate(w, status, "load_error.html", loadErrorData{File: name, Message: msg})
		return
	}
	bs := s.sessions.create(name, st, s.log)
	s.log.WithFields(log.Fields{"session": bs.id, "file": name}).Info("board session opened")
	s.writeHTMLTemplate(w, http.StatusOK, "board.html", boardData{Session: bs.id, File: name, View: board.Project(st)})
}

func (s *Server) handleSessionBoard(w http.ResponseWriter, r *http.Request) {
	bs, err := s.sessions.get(r.PathValue("sid"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, board.Project(bs.snapshot()))
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	bs, err := s.sessions.get(sid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.serveElementsStream(w, r, resourceKey{kind: "session", id: sid}, "#board", func() (string, error) {
		if _, err := s.sessions.get(sid); err != nil {
			return "", err
		}
		return s.renderTemplate("board_lists", boardData{Session: sid, File: bs.file, View: board.Project(bs.snapshot())})
	}, bs.touch)
}

func (s *Server) handleMoveList(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, board.IntentList)
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, board.IntentCard)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, kind board.IntentKind) {
	sid := r.PathValue("sid")
	bs, err := s.sessions.get(sid)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	var in board.MoveIntent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode intent: %v", err))
		return
	}
	in.Kind = kind

	view, changed, err := bs.apply(in)
	if err != nil {
		writeJSON(w, statusFor(err), moveErrorResponse{Error: err.Error(), Board: view})
		return
	}
	if changed {
		s.broadcaster().notify(resourceKey{kind: "session", id: sid})
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCardDetail(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	bs, err := s.sessions.get(sid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	st := bs.snapshot()
	c, ok := st.Card(r.PathValue("cardId"))
	if !ok {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	data := cardDetail(sid, st, c)
	if r.Header.Get("Datastar-Request") != "true" {
		s.writeHTMLTemplate(w, http.StatusOK, "card_detail", data)
		return
	}
	html, err := s.renderTemplate("card_detail", data)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf("console.error(%q)", err.Error()))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#card-detail"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func cardDetail(sid string, st *board.State, c model.Card) cardDetailData {
	d := cardDetailData{
		Session:  sid,
		Card:     c,
		Archived: c.Closed,
		Badges:   board.CardBadges(c),
	}
	if l, ok := st.List(c.ListID); ok {
		d.ListName = l.Name
		d.Archived = d.Archived || l.Closed
	}
	for _, l := range st.LabelsFor(c) {
		d.Labels = append(d.Labels, board.LabelView{ID: l.ID, Name: l.DisplayName(), Color: l.Color.Hex()})
	}
	for _, m := range st.MembersFor(c) {
		d.Members = append(d.Members, board.MemberView{ID: m.ID, FullName: m.FullName, Initials: m.Initials, Avatar: m.Avatar(64)})
	}
	for _, cl := range st.ChecklistsFor(c) {
		done, total, pct := cl.Progress()
		d.Checklists = append(d.Checklists, checklistView{Name: cl.Name, Done: done, Total: total, Percent: pct, Items: cl.SortedItems()})
	}
	if t, ok := c.CreatedAt(); ok {
		d.Created = t
	}
	return d
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	if !s.sessions.remove(sid) {
		http.Error(w, errSessionGone.Error(), http.StatusNotFound)
		return
	}
	s.broadcaster().drop(resourceKey{kind: "session", id: sid})
	s.log.WithField("session", sid).Info("board session closed")
	w.WriteHeader(http.StatusNoContent)
}
