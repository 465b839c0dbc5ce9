package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-web/internal/routes"
	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/view"
)

type Handler struct {
	svc  *Service
	sess *session.Manager
}

func NewHandler(svc *Service, sess *session.Manager) *Handler {
	return &Handler{svc: svc, sess: sess}
}

// Mount registers signup and login on public, logout and profile on private.
func (h *Handler) Mount(public, private gin.IRoutes) {
	public.GET(routes.SignUp, h.signUpPage)
	public.POST(routes.SignUp, h.signUp)
	public.GET(routes.Login, h.loginPage)
	public.POST(routes.Login, h.login)
	private.GET(routes.Logout, h.logout)
	private.GET(routes.Profile, h.profilePage)
	private.POST(routes.Profile, h.updateProfile)
}

func (h *Handler) signUpPage(c *gin.Context) {
	view.Render(c, http.StatusOK, "sign_up.html", gin.H{"title": "Sign up", "form": SignUpForm{}, "errors": FormErrors{}})
}

func (h *Handler) signUp(c *gin.Context) {
	var form SignUpForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password1, form.Password2 = "", ""
		view.Render(c, http.StatusOK, "sign_up.html", gin.H{"title": "Sign up", "form": form, "errors": formErrors(err, form)})
		return
	}
	_, err := h.svc.SignUp(c.Request.Context(), form.Username, form.Email, form.Password1)
	if errors.Is(err, ErrAlreadyExist) {
		errs := FormErrors{}
		errs.Add("username", "A user with that username already exists.")
		view.Render(c, http.StatusOK, "sign_up.html", gin.H{"title": "Sign up", "form": form, "errors": errs})
		return
	}
	if err != nil {
		view.ServerError(c, err)
		return
	}
	view.Redirect(c, session.Success, "Account created successfully", routes.Login)
}

func (h *Handler) loginPage(c *gin.Context) {
	view.Render(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in", "form": LoginForm{}, "errors": FormErrors{}, "next": c.Query("next"),
	})
}

func (h *Handler) login(c *gin.Context) {
	next := c.Query("next")
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password = ""
		view.Render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": form, "errors": formErrors(err, form), "next": next})
		return
	}
	u, err := h.svc.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, ErrBadCredentials) {
		errs := FormErrors{}
		errs.Add("form", "Please enter a correct username and password.")
		form.Password = ""
		view.Render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": form, "errors": errs, "next": next})
		return
	}
	if err != nil {
		view.ServerError(c, err)
		return
	}
	if err := h.sess.Login(c, u.ID, u.Username); err != nil {
		view.ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, routes.SafeNext(next))
}

func (h *Handler) logout(c *gin.Context) {
	h.sess.Logout(c)
	view.Redirect(c, session.Warning, "You are logged out", routes.Home)
}

func (h *Handler) loadProfile(c *gin.Context) (*Profile, bool) {
	p, err := h.svc.Profile(c.Request.Context(), session.UserID(c))
	if errors.Is(err, ErrNotFound) {
		view.NotFound(c)
		return nil, false
	}
	if err != nil {
		view.ServerError(c, err)
		return nil, false
	}
	return p, true
}

func (h *Handler) profilePage(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	view.Render(c, http.StatusOK, "change_profile.html", gin.H{"title": "Profile", "form": profileForm(p), "errors": FormErrors{}})
}

func (h *Handler) updateProfile(c *gin.Context) {
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		view.Render(c, http.StatusOK, "change_profile.html", gin.H{"title": "Profile", "form": form, "errors": formErrors(err, form)})
		return
	}
	form.apply(p)
	err := h.svc.UpdateProfile(c.Request.Context(), p)
	if errors.Is(err, ErrNotFound) {
		view.NotFound(c)
		return
	}
	if err != nil {
		view.ServerError(c, err)
		return
	}
	session.AddFlash(c, session.Success, "Changes saved")
	view.Render(c, http.StatusOK, "change_profile.html", gin.H{"title": "Profile", "form": profileForm(p), "errors": FormErrors{}})
}
